package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"gorm.io/gorm"
)

type AddMemberRequest struct {
	Email string             `json:"email" binding:"required,email"`
	Role  models.ProjectRole `json:"role" binding:"required,oneof=ADMIN MEMBER VIEWER"`
}

type UpdateMemberRoleRequest struct {
	Role models.ProjectRole `json:"role" binding:"required,oneof=ADMIN MEMBER VIEWER"`
}

func ListMembers(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	projectID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if _, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	var members []models.ProjectMember

	err = db.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&members).Error

	if err != nil {
		logger.Log.Errorf("Failed to list members of project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	response := make([]gin.H, 0, len(members))

	for _, member := range members {
		response = append(response, gin.H{
			"id":        member.ID,
			"user_id":   member.UserID,
			"role":      member.Role,
			"joined_at": member.CreatedAt,
			"user": types.UserResponse{
				ID:           member.User.ID,
				Name:         member.User.Name,
				Email:        member.User.Email,
				ProfileImage: member.User.ProfileImage,
				CreatedAt:    member.User.CreatedAt,
			},
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// AddMember invites an existing user by email. OWNER and ADMIN only; the
// OWNER role itself can never be granted here.
func AddMember(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	projectID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	_, err = permissions.RequireRole(db.DB, projectID, currentUser.ID,
		models.ProjectRoleOwner, models.ProjectRoleAdmin)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var req AddMemberRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var user models.User

	err = db.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "해당 이메일의 사용자를 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to look up user by email: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var existing models.ProjectMember

	err = db.DB.Where("project_id = ? AND user_id = ?", projectID, user.ID).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "이 사용자는 이미 프로젝트 멤버입니다"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Errorf("Failed to check existing membership: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	member := models.ProjectMember{
		UserID:    user.ID,
		ProjectID: projectID,
		Role:      req.Role,
	}

	if err := db.DB.Create(&member).Error; err != nil {
		logger.Log.Errorf("Failed to add member to project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":        member.ID,
		"user_id":   user.ID,
		"role":      member.Role,
		"joined_at": member.CreatedAt,
		"user": types.UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	})
}

// UpdateMemberRole is OWNER only. The OWNER's own role is immutable.
func UpdateMemberRole(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	projectID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	memberID, err := utils.ParseIDParam(ctx, "member_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	_, err = permissions.RequireRole(db.DB, projectID, currentUser.ID, models.ProjectRoleOwner)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var req UpdateMemberRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var target models.ProjectMember

	err = db.DB.Where("id = ? AND project_id = ?", memberID, projectID).First(&target).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "멤버를 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch member %d: %v", memberID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if target.Role == models.ProjectRoleOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "프로젝트 소유자의 역할은 변경할 수 없습니다"})
		return
	}

	if err := db.DB.Model(&target).Update("role", req.Role).Error; err != nil {
		logger.Log.Errorf("Failed to update member %d role: %v", memberID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	target.Role = req.Role

	ctx.JSON(http.StatusOK, gin.H{
		"id":      target.ID,
		"user_id": target.UserID,
		"role":    target.Role,
	})
}

// RemoveMember enforces the removal matrix: the OWNER can never be removed,
// an ADMIN cannot remove another ADMIN, and any member may remove themselves.
func RemoveMember(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	projectID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	memberID, err := utils.ParseIDParam(ctx, "member_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	requester, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var target models.ProjectMember

	err = db.DB.Where("id = ? AND project_id = ?", memberID, projectID).First(&target).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "멤버를 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch member %d: %v", memberID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if target.Role == models.ProjectRoleOwner {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "프로젝트 소유자는 제거할 수 없습니다"})
		return
	}

	isSelf := target.UserID == currentUser.ID

	if !isSelf {
		switch requester.Role {
		case models.ProjectRoleOwner:
			// The owner may remove anyone else.
		case models.ProjectRoleAdmin:
			if target.Role == models.ProjectRoleAdmin {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "관리자는 다른 관리자를 제거할 수 없습니다"})
				return
			}
		default:
			ctx.JSON(http.StatusForbidden, gin.H{"error": "이 작업을 수행할 권한이 없습니다"})
			return
		}
	}

	if err := db.DB.Delete(&target).Error; err != nil {
		logger.Log.Errorf("Failed to remove member %d: %v", memberID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "멤버가 성공적으로 제거되었습니다."})
}

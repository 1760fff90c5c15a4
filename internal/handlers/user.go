package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name            string `json:"name"`
	ProfileImage    string `json:"profile_image"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"omitempty,min=8"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required,oneof=ADMIN USER"`
}

func userResponse(user models.User) types.UserResponse {
	return types.UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
		LastLogin:    user.LastLogin,
	}
}

// ListUsers is admin-only.
func ListUsers(ctx *gin.Context) {
	var users []models.User

	if err := db.DB.Order("id asc").Find(&users).Error; err != nil {
		logger.Log.Errorf("Failed to list users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	response := make([]types.UserResponse, 0, len(users))

	for _, user := range users {
		response = append(response, userResponse(user))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetUser(ctx *gin.Context) {
	userID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, userResponse(user))
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		logger.Log.Errorf("Failed to fetch user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var req UpdateProfileRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}

	if req.ProfileImage != "" {
		updates["profile_image"] = req.ProfileImage
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "비밀번호를 변경하려면 현재 비밀번호가 필요합니다"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "현재 비밀번호가 일치하지 않습니다"})
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

		if err != nil {
			logger.Log.Errorf("Failed to hash new password: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
			return
		}

		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		logger.Log.Errorf("Failed to update user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		logger.Log.Errorf("Failed to refresh user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// UpdateUserRole changes a user's global role. Admin-only route.
func UpdateUserRole(ctx *gin.Context) {
	userID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var req UpdateUserRoleRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if err := db.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		logger.Log.Errorf("Failed to update role for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	user.Role = req.Role
	ctx.JSON(http.StatusOK, userResponse(user))
}

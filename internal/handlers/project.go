package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Status      models.ProjectStatus `json:"status" binding:"omitempty,oneof=ACTIVE COMPLETED SUSPENDED"`
}

type ProjectSummary struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     *time.Time           `json:"end_date,omitempty"`
	Status      models.ProjectStatus `json:"status"`
	MyRole      models.ProjectRole   `json:"my_role"`
	MemberCount int64                `json:"member_count"`
	WorkerCount int64                `json:"worker_count"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ListProjects returns only projects the requester is a member of, newest
// first, with the requester's role and headline counts attached.
func ListProjects(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	page, limit := utils.ParsePagination(ctx, 10)

	var memberships []models.ProjectMember
	var total int64

	base := db.DB.Model(&models.ProjectMember{}).Where("user_id = ?", currentUser.ID)

	if err := base.Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count memberships: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	err = db.DB.Preload("Project").
		Where("user_id = ?", currentUser.ID).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&memberships).Error

	if err != nil {
		logger.Log.Errorf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	projects := make([]ProjectSummary, 0, len(memberships))

	for _, membership := range memberships {
		var memberCount, workerCount int64

		db.DB.Model(&models.ProjectMember{}).Where("project_id = ?", membership.ProjectID).Count(&memberCount)
		db.DB.Model(&models.Worker{}).Where("project_id = ?", membership.ProjectID).Count(&workerCount)

		projects = append(projects, ProjectSummary{
			ID:          membership.Project.ID,
			Name:        membership.Project.Name,
			Description: membership.Project.Description,
			StartDate:   membership.Project.StartDate,
			EndDate:     membership.Project.EndDate,
			Status:      membership.Project.Status,
			MyRole:      membership.Role,
			MemberCount: memberCount,
			WorkerCount: workerCount,
			CreatedAt:   membership.Project.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"meta":     types.NewPageMeta(total, page, limit),
	})
}

func GetProject(ctx *gin.Context) {
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

	member, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	var project models.Project

	err = db.DB.Preload("Members").Preload("Members.User").First(&project, projectID).Error

	if err != nil {
		logger.Log.Errorf("Failed to fetch project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	members := make([]gin.H, 0, len(project.Members))

	for _, m := range project.Members {
		members = append(members, gin.H{
			"id":        m.ID,
			"user_id":   m.UserID,
			"role":      m.Role,
			"joined_at": m.CreatedAt,
			"user": types.UserResponse{
				ID:           m.User.ID,
				Name:         m.User.Name,
				Email:        m.User.Email,
				ProfileImage: m.User.ProfileImage,
				CreatedAt:    m.User.CreatedAt,
			},
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"start_date":  project.StartDate,
		"end_date":    project.EndDate,
		"status":      project.Status,
		"my_role":     member.Role,
		"members":     members,
		"created_at":  project.CreatedAt,
		"updated_at":  project.UpdatedAt,
	})
}

// CreateProject inserts the project and the creator's OWNER membership in
// one transaction.
func CreateProject(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	var req CreateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "종료일은 시작일보다 이후여야 합니다"})
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      models.ProjectStatusActive,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		member := models.ProjectMember{
			UserID:    currentUser.ID,
			ProjectID: project.ID,
			Role:      models.ProjectRoleOwner,
		}

		return tx.Create(&member).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to create project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	logger.Log.Infof("Project %d created by user %d", project.ID, currentUser.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"start_date":  project.StartDate,
		"end_date":    project.EndDate,
		"status":      project.Status,
		"my_role":     models.ProjectRoleOwner,
		"created_at":  project.CreatedAt,
	})
}

func UpdateProject(ctx *gin.Context) {
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

	var req UpdateProjectRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}

	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}

	if req.Status != "" {
		updates["status"] = req.Status
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	if err := db.DB.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
		logger.Log.Errorf("Failed to update project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		logger.Log.Errorf("Failed to refresh project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"start_date":  project.StartDate,
		"end_date":    project.EndDate,
		"status":      project.Status,
		"updated_at":  project.UpdatedAt,
	})
}

// DeleteProject removes the project and its dependent rows. OWNER only.
func DeleteProject(ctx *gin.Context) {
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

	_, err = permissions.RequireRole(db.DB, projectID, currentUser.ID, models.ProjectRoleOwner)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var assessmentIDs []uint

		if err := tx.Model(&models.RiskAssessment{}).
			Where("project_id = ?", projectID).Pluck("id", &assessmentIDs).Error; err != nil {
			return err
		}

		if len(assessmentIDs) > 0 {
			if err := tx.Where("assessment_id IN ?", assessmentIDs).
				Delete(&models.RiskFactor{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.RiskAssessment{}).Error; err != nil {
			return err
		}

		var workerIDs []uint

		if err := tx.Model(&models.Worker{}).
			Where("project_id = ?", projectID).Pluck("id", &workerIDs).Error; err != nil {
			return err
		}

		if len(workerIDs) > 0 {
			if err := tx.Where("worker_id IN ?", workerIDs).
				Delete(&models.WorkerEducation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("worker_id IN ?", workerIDs).
				Delete(&models.WorkerCheckin{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.Worker{}).Error; err != nil {
			return err
		}

		// Documents and posts survive the project; their project link is cleared.
		if err := tx.Model(&models.SafetyDocument{}).
			Where("project_id = ?", projectID).Update("project_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.CommunityPost{}).
			Where("project_id = ?", projectID).Update("project_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, projectID).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to delete project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	logger.Log.Infof("Project %d deleted by user %d", projectID, currentUser.ID)
	ctx.JSON(http.StatusOK, gin.H{"message": "프로젝트가 성공적으로 삭제되었습니다."})
}

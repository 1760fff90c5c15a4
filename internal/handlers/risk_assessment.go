package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/export"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"github.com/safework-dev/safework/internal/workflow"
	"gorm.io/gorm"
)

type RiskFactorInput struct {
	Title           string           `json:"title" binding:"required"`
	Description     string           `json:"description"`
	Likelihood      int              `json:"likelihood" binding:"required,min=1,max=5"`
	Severity        int              `json:"severity" binding:"required,min=1,max=5"`
	RiskLevel       models.RiskLevel `json:"risk_level" binding:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	ControlMeasures string           `json:"control_measures"`
}

type CreateAssessmentRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	RiskFactors []RiskFactorInput `json:"risk_factors" binding:"omitempty,dive"`
}

type UpdateAssessmentRequest struct {
	Title       string                  `json:"title"`
	Description *string                 `json:"description"`
	Status      models.AssessmentStatus `json:"status" binding:"omitempty,oneof=DRAFT COMPLETED APPROVED REJECTED"`
}

// loadAssessment fetches the assessment inside the given project, mapping a
// missing row to the domain's NotFound message.
func loadAssessment(ctx *gin.Context, projectID uint, assessmentID uint, preloadFactors bool) (*models.RiskAssessment, bool) {
	query := db.DB.Where("id = ? AND project_id = ?", assessmentID, projectID)

	if preloadFactors {
		query = query.Preload("RiskFactors", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id asc")
		})
	}

	var assessment models.RiskAssessment

	if err := query.First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "위험성 평가를 찾을 수 없습니다"})
			return nil, false
		}
		logger.Log.Errorf("Failed to fetch risk assessment %d: %v", assessmentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return nil, false
	}

	return &assessment, true
}

func ListRiskAssessments(ctx *gin.Context) {
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

	page, limit := utils.ParsePagination(ctx, 10)

	query := db.DB.Model(&models.RiskAssessment{}).Where("project_id = ?", projectID)

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count risk assessments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var assessments []models.RiskAssessment

	err = query.Preload("User").Preload("RiskFactors").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&assessments).Error

	if err != nil {
		logger.Log.Errorf("Failed to list risk assessments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	response := make([]gin.H, 0, len(assessments))

	for _, assessment := range assessments {
		response = append(response, assessmentResponse(&assessment, true))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"risk_assessments": response,
		"meta":             types.NewPageMeta(total, page, limit),
	})
}

func GetRiskAssessment(ctx *gin.Context) {
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

	assessmentID, err := utils.ParseIDParam(ctx, "assessment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if _, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	assessment, ok := loadAssessment(ctx, projectID, assessmentID, true)

	if !ok {
		return
	}

	if err := db.DB.Model(assessment).Association("User").Find(&assessment.User); err != nil {
		logger.Log.Warnf("Failed to load assessment creator: %v", err)
	}

	ctx.JSON(http.StatusOK, assessmentResponse(assessment, true))
}

func CreateRiskAssessment(ctx *gin.Context) {
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

	if err := workflow.CanCreate(member.Role); err != nil {
		respondDomainError(ctx, err)
		return
	}

	var req CreateAssessmentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	assessment := models.RiskAssessment{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.AssessmentStatusDraft,
		UserID:      currentUser.ID,
		ProjectID:   projectID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}

		for _, input := range req.RiskFactors {
			factor := models.RiskFactor{
				Title:           input.Title,
				Description:     input.Description,
				Likelihood:      input.Likelihood,
				Severity:        input.Severity,
				RiskLevel:       input.RiskLevel,
				ControlMeasures: input.ControlMeasures,
				AssessmentID:    assessment.ID,
			}

			if err := tx.Create(&factor).Error; err != nil {
				return err
			}

			assessment.RiskFactors = append(assessment.RiskFactors, factor)
		}

		return nil
	})

	if err != nil {
		logger.Log.Errorf("Failed to create risk assessment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	logger.Log.Infof("Risk assessment %d created in project %d by user %d",
		assessment.ID, projectID, currentUser.ID)

	ctx.JSON(http.StatusCreated, assessmentResponse(&assessment, true))
}

func UpdateRiskAssessment(ctx *gin.Context) {
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

	assessmentID, err := utils.ParseIDParam(ctx, "assessment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	member, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	assessment, ok := loadAssessment(ctx, projectID, assessmentID, false)

	if !ok {
		return
	}

	isCreator := assessment.UserID == currentUser.ID

	if err := workflow.CanEditAssessment(assessment.Status, member.Role, isCreator); err != nil {
		respondDomainError(ctx, err)
		return
	}

	var req UpdateAssessmentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	updates := make(map[string]interface{})

	if req.Title != "" {
		updates["title"] = req.Title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	nextStatus := workflow.StatusOnUpdate(assessment.Status, req.Status)

	if nextStatus != assessment.Status {
		updates["status"] = nextStatus
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	if err := db.DB.Model(assessment).Updates(updates).Error; err != nil {
		logger.Log.Errorf("Failed to update risk assessment %d: %v", assessmentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	updated, ok := loadAssessment(ctx, projectID, assessmentID, true)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, assessmentResponse(updated, true))
}

func DeleteRiskAssessment(ctx *gin.Context) {
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

	assessmentID, err := utils.ParseIDParam(ctx, "assessment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	member, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	assessment, ok := loadAssessment(ctx, projectID, assessmentID, false)

	if !ok {
		return
	}

	if err := workflow.CanDeleteAssessment(member.Role, assessment.UserID == currentUser.ID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", assessment.ID).
			Delete(&models.RiskFactor{}).Error; err != nil {
			return err
		}
		return tx.Delete(assessment).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to delete risk assessment %d: %v", assessmentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "위험성 평가가 성공적으로 삭제되었습니다."})
}

// ExportRiskAssessmentPDF streams the assessment report as a PDF download.
func ExportRiskAssessmentPDF(ctx *gin.Context) {
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

	assessmentID, err := utils.ParseIDParam(ctx, "assessment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if _, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	assessment, ok := loadAssessment(ctx, projectID, assessmentID, true)

	if !ok {
		return
	}

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		logger.Log.Errorf("Failed to fetch project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if err := db.DB.Model(assessment).Association("User").Find(&assessment.User); err != nil {
		logger.Log.Warnf("Failed to load assessment creator: %v", err)
	}

	data, err := export.RiskAssessmentPDF(&project, assessment)

	if err != nil {
		logger.Log.Errorf("Failed to render PDF for assessment %d: %v", assessmentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	filename := fmt.Sprintf("risk-assessment-%d-%s.pdf", assessment.ID, time.Now().Format("20060102"))

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "application/pdf", data)
}

func assessmentResponse(assessment *models.RiskAssessment, includeFactors bool) gin.H {
	body := gin.H{
		"id":          assessment.ID,
		"title":       assessment.Title,
		"description": assessment.Description,
		"status":      assessment.Status,
		"user_id":     assessment.UserID,
		"project_id":  assessment.ProjectID,
		"created_at":  assessment.CreatedAt,
		"updated_at":  assessment.UpdatedAt,
	}

	if assessment.User.ID != 0 {
		body["creator"] = gin.H{
			"id":   assessment.User.ID,
			"name": assessment.User.Name,
		}
	}

	if includeFactors {
		factors := make([]gin.H, 0, len(assessment.RiskFactors))

		for _, factor := range assessment.RiskFactors {
			factors = append(factors, gin.H{
				"id":               factor.ID,
				"title":            factor.Title,
				"description":      factor.Description,
				"likelihood":       factor.Likelihood,
				"severity":         factor.Severity,
				"risk_level":       factor.RiskLevel,
				"control_measures": factor.ControlMeasures,
				"created_at":       factor.CreatedAt,
			})
		}

		body["risk_factors"] = factors
	}

	return body
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/utils"
	"github.com/safework-dev/safework/internal/workflow"
	"gorm.io/gorm"
)

type UpdateRiskFactorRequest struct {
	Title           string           `json:"title"`
	Description     *string          `json:"description"`
	Likelihood      int              `json:"likelihood" binding:"omitempty,min=1,max=5"`
	Severity        int              `json:"severity" binding:"omitempty,min=1,max=5"`
	RiskLevel       models.RiskLevel `json:"risk_level" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	ControlMeasures *string          `json:"control_measures"`
}

// factorEditContext resolves the membership, assessment and factor for a
// factor mutation. The factor must belong to the assessment, which must
// belong to the project.
func factorEditContext(ctx *gin.Context) (member *models.ProjectMember, assessment *models.RiskAssessment, factor *models.RiskFactor, ok bool) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return nil, nil, nil, false
	}

	projectID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return nil, nil, nil, false
	}

	assessmentID, err := utils.ParseIDParam(ctx, "assessment_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return nil, nil, nil, false
	}

	member, err = permissions.RequireMembership(db.DB, projectID, currentUser.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return nil, nil, nil, false
	}

	assessment, ok = loadAssessment(ctx, projectID, assessmentID, false)

	if !ok {
		return nil, nil, nil, false
	}

	if raw := ctx.Param("factor_id"); raw != "" {
		factorID, err := utils.ParseIDParam(ctx, "factor_id")

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
			return nil, nil, nil, false
		}

		var found models.RiskFactor

		err = db.DB.Where("id = ? AND assessment_id = ?", factorID, assessment.ID).First(&found).Error

		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "위험 요소를 찾을 수 없습니다"})
				return nil, nil, nil, false
			}
			logger.Log.Errorf("Failed to fetch risk factor %d: %v", factorID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
			return nil, nil, nil, false
		}

		factor = &found
	}

	return member, assessment, factor, true
}

func AddRiskFactor(ctx *gin.Context) {
	member, assessment, _, ok := factorEditContext(ctx)

	if !ok {
		return
	}

	isCreator := assessment.UserID == member.UserID

	if err := workflow.CanEditFactors(assessment.Status, member.Role, isCreator); err != nil {
		respondDomainError(ctx, err)
		return
	}

	var req RiskFactorInput

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	factor := models.RiskFactor{
		Title:           req.Title,
		Description:     req.Description,
		Likelihood:      req.Likelihood,
		Severity:        req.Severity,
		RiskLevel:       req.RiskLevel,
		ControlMeasures: req.ControlMeasures,
		AssessmentID:    assessment.ID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&factor).Error; err != nil {
			return err
		}
		return applyFactorStatusRevert(tx, assessment)
	})

	if err != nil {
		logger.Log.Errorf("Failed to add risk factor: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":               factor.ID,
		"title":            factor.Title,
		"description":      factor.Description,
		"likelihood":       factor.Likelihood,
		"severity":         factor.Severity,
		"risk_level":       factor.RiskLevel,
		"control_measures": factor.ControlMeasures,
		"assessment_id":    factor.AssessmentID,
		"created_at":       factor.CreatedAt,
	})
}

func UpdateRiskFactor(ctx *gin.Context) {
	member, assessment, factor, ok := factorEditContext(ctx)

	if !ok {
		return
	}

	isCreator := assessment.UserID == member.UserID

	if err := workflow.CanEditFactors(assessment.Status, member.Role, isCreator); err != nil {
		respondDomainError(ctx, err)
		return
	}

	var req UpdateRiskFactorRequest

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

	if req.Likelihood != 0 {
		updates["likelihood"] = req.Likelihood
	}

	if req.Severity != 0 {
		updates["severity"] = req.Severity
	}

	if req.RiskLevel != "" {
		updates["risk_level"] = req.RiskLevel
	}

	if req.ControlMeasures != nil {
		updates["control_measures"] = *req.ControlMeasures
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(factor).Updates(updates).Error; err != nil {
			return err
		}
		return applyFactorStatusRevert(tx, assessment)
	})

	if err != nil {
		logger.Log.Errorf("Failed to update risk factor %d: %v", factor.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":               factor.ID,
		"title":            factor.Title,
		"description":      factor.Description,
		"likelihood":       factor.Likelihood,
		"severity":         factor.Severity,
		"risk_level":       factor.RiskLevel,
		"control_measures": factor.ControlMeasures,
		"assessment_id":    factor.AssessmentID,
		"updated_at":       factor.UpdatedAt,
	})
}

func DeleteRiskFactor(ctx *gin.Context) {
	member, assessment, factor, ok := factorEditContext(ctx)

	if !ok {
		return
	}

	isCreator := assessment.UserID == member.UserID

	if err := workflow.CanDeleteFactor(assessment.Status, member.Role, isCreator); err != nil {
		respondDomainError(ctx, err)
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(factor).Error; err != nil {
			return err
		}
		return applyFactorStatusRevert(tx, assessment)
	})

	if err != nil {
		logger.Log.Errorf("Failed to delete risk factor %d: %v", factor.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "위험 요소가 성공적으로 삭제되었습니다."})
}

// applyFactorStatusRevert persists the REJECTED to DRAFT revert when a
// structural change touches a rejected assessment.
func applyFactorStatusRevert(tx *gorm.DB, assessment *models.RiskAssessment) error {
	next := workflow.StatusAfterFactorChange(assessment.Status)

	if next == assessment.Status {
		return nil
	}

	if err := tx.Model(assessment).Update("status", next).Error; err != nil {
		return err
	}

	assessment.Status = next
	return nil
}

package handlers

import (
	"errors"
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

type CreateDocumentRequest struct {
	Title        string              `json:"title" binding:"required"`
	Description  string              `json:"description"`
	FilePath     string              `json:"file_path" binding:"required"`
	DocumentType models.DocumentType `json:"document_type" binding:"required,oneof=SAFETY_PLAN RISK_REPORT EDUCATION_CERT INSPECTION OTHER"`
	ValidFrom    time.Time           `json:"valid_from" binding:"required"`
	ValidUntil   *time.Time          `json:"valid_until"`
	ProjectID    *uint               `json:"project_id"`
}

type UpdateDocumentRequest struct {
	Title        string              `json:"title"`
	Description  *string             `json:"description"`
	FilePath     string              `json:"file_path"`
	DocumentType models.DocumentType `json:"document_type" binding:"omitempty,oneof=SAFETY_PLAN RISK_REPORT EDUCATION_CERT INSPECTION OTHER"`
	ValidFrom    *time.Time          `json:"valid_from"`
	ValidUntil   *time.Time          `json:"valid_until"`
	ProjectID    *uint               `json:"project_id"`
}

type GrantAccessRequest struct {
	UserID      uint               `json:"user_id" binding:"required"`
	AccessLevel models.AccessLevel `json:"access_level" binding:"required,oneof=READ WRITE ADMIN"`
}

// documentAccessLevel resolves what the user may do with a document. The
// owner has implicit ADMIN; everyone else needs a DocumentAccess grant.
func documentAccessLevel(document *models.SafetyDocument, userID uint) (models.AccessLevel, bool) {
	if document.UserID == userID {
		return models.AccessLevelAdmin, true
	}

	var access models.DocumentAccess

	err := db.DB.Where("document_id = ? AND user_id = ?", document.ID, userID).First(&access).Error

	if err != nil {
		return "", false
	}

	return access.AccessLevel, true
}

func canWriteDocument(level models.AccessLevel) bool {
	return level == models.AccessLevelWrite || level == models.AccessLevelAdmin
}

func loadDocument(ctx *gin.Context, documentID uint) (*models.SafetyDocument, bool) {
	var document models.SafetyDocument

	if err := db.DB.First(&document, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "문서를 찾을 수 없습니다."})
			return nil, false
		}
		logger.Log.Errorf("Failed to fetch document %d: %v", documentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return nil, false
	}

	return &document, true
}

// ListDocuments returns documents the user owns or was granted access to,
// with optional title/type/project/validity filters.
func ListDocuments(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	page, limit := utils.ParsePagination(ctx, 10)

	query := db.DB.Model(&models.SafetyDocument{}).
		Where("user_id = ? OR id IN (?)", currentUser.ID,
			db.DB.Model(&models.DocumentAccess{}).Select("document_id").Where("user_id = ?", currentUser.ID))

	if title := ctx.Query("title"); title != "" {
		query = query.Where("title LIKE ?", "%"+title+"%")
	}

	if documentType := ctx.Query("document_type"); documentType != "" {
		query = query.Where("document_type = ?", documentType)
	}

	if projectID := ctx.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	if ctx.Query("only_valid") == "true" {
		now := time.Now()
		query = query.Where("valid_from <= ? AND (valid_until IS NULL OR valid_until >= ?)", now, now)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count documents: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var documents []models.SafetyDocument

	err = query.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&documents).Error

	if err != nil {
		logger.Log.Errorf("Failed to list documents: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	response := make([]gin.H, 0, len(documents))

	for i := range documents {
		response = append(response, documentResponse(&documents[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"documents": response,
		"meta":      types.NewPageMeta(total, page, limit),
	})
}

func GetDocument(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	documentID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	document, ok := loadDocument(ctx, documentID)

	if !ok {
		return
	}

	level, allowed := documentAccessLevel(document, currentUser.ID)

	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 문서에 접근할 권한이 없습니다."})
		return
	}

	var accesses []models.DocumentAccess

	if err := db.DB.Preload("User").Where("document_id = ?", document.ID).Find(&accesses).Error; err != nil {
		logger.Log.Warnf("Failed to load document accesses: %v", err)
	}

	body := documentResponse(document)
	body["my_access_level"] = level

	grants := make([]gin.H, 0, len(accesses))

	for _, access := range accesses {
		grants = append(grants, gin.H{
			"id":           access.ID,
			"user_id":      access.UserID,
			"access_level": access.AccessLevel,
			"user": types.UserResponse{
				ID:        access.User.ID,
				Name:      access.User.Name,
				Email:     access.User.Email,
				CreatedAt: access.User.CreatedAt,
			},
		})
	}

	body["accesses"] = grants
	ctx.JSON(http.StatusOK, body)
}

func CreateDocument(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	var req CreateDocumentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if req.ValidUntil != nil && req.ValidUntil.Before(req.ValidFrom) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "만료일은 유효 시작일보다 이후여야 합니다"})
		return
	}

	if req.ProjectID != nil {
		if _, err := permissions.RequireMembership(db.DB, *req.ProjectID, currentUser.ID); err != nil {
			respondDomainError(ctx, err)
			return
		}
	}

	document := models.SafetyDocument{
		Title:        req.Title,
		Description:  req.Description,
		FilePath:     req.FilePath,
		DocumentType: req.DocumentType,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		UserID:       currentUser.ID,
		ProjectID:    req.ProjectID,
	}

	if err := db.DB.Create(&document).Error; err != nil {
		logger.Log.Errorf("Failed to create document: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, documentResponse(&document))
}

func UpdateDocument(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	documentID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	document, ok := loadDocument(ctx, documentID)

	if !ok {
		return
	}

	level, allowed := documentAccessLevel(document, currentUser.ID)

	if !allowed || !canWriteDocument(level) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 문서를 수정할 권한이 없습니다."})
		return
	}

	var req UpdateDocumentRequest

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

	if req.FilePath != "" {
		updates["file_path"] = req.FilePath
	}

	if req.DocumentType != "" {
		updates["document_type"] = req.DocumentType
	}

	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}

	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}

	if req.ProjectID != nil {
		if _, err := permissions.RequireMembership(db.DB, *req.ProjectID, currentUser.ID); err != nil {
			respondDomainError(ctx, err)
			return
		}
		updates["project_id"] = *req.ProjectID
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	if err := db.DB.Model(document).Updates(updates).Error; err != nil {
		logger.Log.Errorf("Failed to update document %d: %v", documentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, documentResponse(document))
}

// DeleteDocument requires the owner or an ADMIN grant.
func DeleteDocument(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	documentID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	document, ok := loadDocument(ctx, documentID)

	if !ok {
		return
	}

	level, allowed := documentAccessLevel(document, currentUser.ID)

	if !allowed || level != models.AccessLevelAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 문서를 삭제할 권한이 없습니다."})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", document.ID).Delete(&models.DocumentAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(document).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to delete document %d: %v", documentID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "문서가 성공적으로 삭제되었습니다."})
}

// GrantDocumentAccess creates or updates a grant. Requires ADMIN access.
// Granting to the owner is rejected: the owner's access is implicit.
func GrantDocumentAccess(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	documentID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	document, ok := loadDocument(ctx, documentID)

	if !ok {
		return
	}

	level, allowed := documentAccessLevel(document, currentUser.ID)

	if !allowed || level != models.AccessLevelAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 문서의 권한을 관리할 권한이 없습니다."})
		return
	}

	var req GrantAccessRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if req.UserID == document.UserID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "문서 소유자에게는 권한을 부여할 수 없습니다."})
		return
	}

	var target models.User

	if err := db.DB.First(&target, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "지정된 사용자를 찾을 수 없습니다."})
			return
		}
		logger.Log.Errorf("Failed to fetch user %d: %v", req.UserID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var access models.DocumentAccess

	err = db.DB.Where("document_id = ? AND user_id = ?", document.ID, req.UserID).First(&access).Error

	switch {
	case err == nil:
		if err := db.DB.Model(&access).Update("access_level", req.AccessLevel).Error; err != nil {
			logger.Log.Errorf("Failed to update access grant: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
			return
		}
		access.AccessLevel = req.AccessLevel
	case errors.Is(err, gorm.ErrRecordNotFound):
		access = models.DocumentAccess{
			UserID:      req.UserID,
			DocumentID:  document.ID,
			AccessLevel: req.AccessLevel,
		}

		if err := db.DB.Create(&access).Error; err != nil {
			logger.Log.Errorf("Failed to create access grant: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
			return
		}
	default:
		logger.Log.Errorf("Failed to check access grant: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":           access.ID,
		"user_id":      access.UserID,
		"document_id":  access.DocumentID,
		"access_level": access.AccessLevel,
	})
}

// RevokeDocumentAccess removes a grant. Revoking the owner is always a 400
// even though no grant row exists for them.
func RevokeDocumentAccess(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	documentID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	targetUserID, err := utils.ParseIDParam(ctx, "user_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	document, ok := loadDocument(ctx, documentID)

	if !ok {
		return
	}

	// The owner rejection comes before the permission gate so every caller
	// sees the same 400 for this target.
	if targetUserID == document.UserID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "문서 소유자의 권한은 제거할 수 없습니다."})
		return
	}

	level, allowed := documentAccessLevel(document, currentUser.ID)

	if !allowed || level != models.AccessLevelAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "이 문서의 권한을 관리할 권한이 없습니다."})
		return
	}

	var access models.DocumentAccess

	err = db.DB.Where("document_id = ? AND user_id = ?", document.ID, targetUserID).First(&access).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "해당 사용자에게 부여된 권한을 찾을 수 없습니다."})
			return
		}
		logger.Log.Errorf("Failed to fetch access grant: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if err := db.DB.Delete(&access).Error; err != nil {
		logger.Log.Errorf("Failed to revoke access grant: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "접근 권한이 성공적으로 제거되었습니다."})
}

func documentResponse(document *models.SafetyDocument) gin.H {
	return gin.H{
		"id":            document.ID,
		"title":         document.Title,
		"description":   document.Description,
		"file_path":     document.FilePath,
		"document_type": document.DocumentType,
		"valid_from":    document.ValidFrom,
		"valid_until":   document.ValidUntil,
		"user_id":       document.UserID,
		"project_id":    document.ProjectID,
		"created_at":    document.CreatedAt,
		"updated_at":    document.UpdatedAt,
	}
}

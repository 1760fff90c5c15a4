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
	"gorm.io/gorm"
)

type CreateWorkerRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactNumber string `json:"contact_number"`
	Position      string `json:"position"`
}

type UpdateWorkerRequest struct {
	Name          string  `json:"name"`
	ContactNumber *string `json:"contact_number"`
	Position      *string `json:"position"`
}

type AddEducationRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	CompletionDate time.Time  `json:"completion_date" binding:"required"`
	ExpiryDate     *time.Time `json:"expiry_date"`
}

type CheckinRequest struct {
	CheckinTime  time.Time  `json:"checkin_time" binding:"required"`
	CheckoutTime *time.Time `json:"checkout_time"`
	Location     string     `json:"location"`
}

type CheckoutRequest struct {
	CheckoutTime time.Time `json:"checkout_time" binding:"required"`
}

// loadWorker fetches the worker scoped to the project.
func loadWorker(ctx *gin.Context, projectID uint, workerID uint) (*models.Worker, bool) {
	var worker models.Worker

	err := db.DB.Where("id = ? AND project_id = ?", workerID, projectID).First(&worker).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "근로자를 찾을 수 없습니다."})
			return nil, false
		}
		logger.Log.Errorf("Failed to fetch worker %d: %v", workerID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return nil, false
	}

	return &worker, true
}

func ListWorkers(ctx *gin.Context) {
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

	page, limit := utils.ParsePagination(ctx, 20)

	query := db.DB.Model(&models.Worker{}).Where("project_id = ?", projectID)

	if name := ctx.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count workers: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var workers []models.Worker

	err = query.Preload("Educations").
		Order("name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&workers).Error

	if err != nil {
		logger.Log.Errorf("Failed to list workers: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"workers": workers,
		"meta":    types.NewPageMeta(total, page, limit),
	})
}

func GetWorker(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if _, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	var worker models.Worker

	err = db.DB.Where("id = ? AND project_id = ?", workerID, projectID).
		Preload("Educations", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("completion_date desc")
		}).
		Preload("Checkins", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("checkin_time desc").Limit(30)
		}).
		First(&worker).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "근로자를 찾을 수 없습니다."})
			return
		}
		logger.Log.Errorf("Failed to fetch worker %d: %v", workerID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, worker)
}

// CreateWorker requires OWNER or ADMIN.
func CreateWorker(ctx *gin.Context) {
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

	var req CreateWorkerRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	worker := models.Worker{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Position:      req.Position,
		ProjectID:     projectID,
	}

	if err := db.DB.Create(&worker).Error; err != nil {
		logger.Log.Errorf("Failed to create worker: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, worker)
}

func UpdateWorker(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

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

	worker, ok := loadWorker(ctx, projectID, workerID)

	if !ok {
		return
	}

	var req UpdateWorkerRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.ContactNumber != nil {
		updates["contact_number"] = *req.ContactNumber
	}

	if req.Position != nil {
		updates["position"] = *req.Position
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "수정할 항목이 없습니다"})
		return
	}

	if err := db.DB.Model(worker).Updates(updates).Error; err != nil {
		logger.Log.Errorf("Failed to update worker %d: %v", workerID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, worker)
}

func DeleteWorker(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

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

	worker, ok := loadWorker(ctx, projectID, workerID)

	if !ok {
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("worker_id = ?", worker.ID).Delete(&models.WorkerEducation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("worker_id = ?", worker.ID).Delete(&models.WorkerCheckin{}).Error; err != nil {
			return err
		}
		return tx.Delete(worker).Error
	})

	if err != nil {
		logger.Log.Errorf("Failed to delete worker %d: %v", workerID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "근로자가 성공적으로 삭제되었습니다."})
}

// AddWorkerEducation records a completed safety education. OWNER/ADMIN only.
func AddWorkerEducation(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

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

	worker, ok := loadWorker(ctx, projectID, workerID)

	if !ok {
		return
	}

	var req AddEducationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if req.ExpiryDate != nil && !req.ExpiryDate.After(req.CompletionDate) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "만료일은 이수일보다 이후여야 합니다."})
		return
	}

	education := models.WorkerEducation{
		Title:          req.Title,
		Description:    req.Description,
		CompletionDate: req.CompletionDate,
		ExpiryDate:     req.ExpiryDate,
		WorkerID:       worker.ID,
	}

	if err := db.DB.Create(&education).Error; err != nil {
		logger.Log.Errorf("Failed to add education: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, education)
}

func DeleteWorkerEducation(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	educationID, err := utils.ParseIDParam(ctx, "education_id")

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

	worker, ok := loadWorker(ctx, projectID, workerID)

	if !ok {
		return
	}

	result := db.DB.Where("id = ? AND worker_id = ?", educationID, worker.ID).
		Delete(&models.WorkerEducation{})

	if result.Error != nil {
		logger.Log.Errorf("Failed to delete education %d: %v", educationID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "교육 이력을 찾을 수 없습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "교육 이력이 성공적으로 삭제되었습니다."})
}

// CheckinWorker records site entry, optionally with the exit time already
// known. A checkout time must come after the checkin time.
func CheckinWorker(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	_, err = permissions.RequireRole(db.DB, projectID, currentUser.ID,
		models.ProjectRoleOwner, models.ProjectRoleAdmin, models.ProjectRoleMember)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	worker, ok := loadWorker(ctx, projectID, workerID)

	if !ok {
		return
	}

	var req CheckinRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if req.CheckoutTime != nil && !req.CheckoutTime.After(req.CheckinTime) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "퇴출 시간은 출입 시간보다 이후여야 합니다."})
		return
	}

	checkin := models.WorkerCheckin{
		CheckinTime:  req.CheckinTime,
		CheckoutTime: req.CheckoutTime,
		Location:     req.Location,
		WorkerID:     worker.ID,
	}

	if err := db.DB.Create(&checkin).Error; err != nil {
		logger.Log.Errorf("Failed to record checkin: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, checkin)
}

// CheckoutWorker closes an open checkin record.
func CheckoutWorker(ctx *gin.Context) {
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

	workerID, err := utils.ParseIDParam(ctx, "worker_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	checkinID, err := utils.ParseIDParam(ctx, "checkin_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	_, err = permissions.RequireRole(db.DB, projectID, currentUser.ID,
		models.ProjectRoleOwner, models.ProjectRoleAdmin, models.ProjectRoleMember)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	worker, ok := loadWorker(ctx, projectID, workerID)

	if !ok {
		return
	}

	var checkin models.WorkerCheckin

	err = db.DB.Where("id = ? AND worker_id = ?", checkinID, worker.ID).First(&checkin).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "출입 기록을 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch checkin %d: %v", checkinID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	if checkin.CheckoutTime != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "이미 퇴출 처리된 기록입니다."})
		return
	}

	var req CheckoutRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if !req.CheckoutTime.After(checkin.CheckinTime) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "퇴출 시간은 출입 시간보다 이후여야 합니다."})
		return
	}

	if err := db.DB.Model(&checkin).Update("checkout_time", req.CheckoutTime).Error; err != nil {
		logger.Log.Errorf("Failed to record checkout: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	checkin.CheckoutTime = &req.CheckoutTime
	ctx.JSON(http.StatusOK, checkin)
}

// ExportWorkersExcel streams the project's worker roster as an xlsx download.
func ExportWorkersExcel(ctx *gin.Context) {
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

	var project models.Project

	if err := db.DB.First(&project, projectID).Error; err != nil {
		logger.Log.Errorf("Failed to fetch project %d: %v", projectID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var workers []models.Worker

	err = db.DB.Where("project_id = ?", projectID).
		Preload("Educations").
		Order("name asc").
		Find(&workers).Error

	if err != nil {
		logger.Log.Errorf("Failed to list workers for export: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	data, err := export.WorkerRosterExcel(&project, workers)

	if err != nil {
		logger.Log.Errorf("Failed to render worker roster: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	filename := fmt.Sprintf("workers-%d-%s.xlsx", projectID, time.Now().Format("20060102"))

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

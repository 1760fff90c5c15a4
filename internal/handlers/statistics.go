package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/utils"
)

type statusCountRow struct {
	Status models.AssessmentStatus
	Count  int64
}

type levelCountRow struct {
	RiskLevel models.RiskLevel
	Count     int64
}

type monthlyCountRow struct {
	Year  int
	Month int
	Count int64
}

type dailyCountRow struct {
	Day   time.Time
	Count int64
}

type workerCountRow struct {
	WorkerID uint
	Name     string
	Count    int64
}

// GetProjectStatistics aggregates the project dashboard numbers. Counts are
// computed fresh on every call and every enum value appears in the result,
// zero included.
func GetProjectStatistics(ctx *gin.Context) {
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

	var statusRows []statusCountRow

	err = db.DB.Model(&models.RiskAssessment{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&statusRows).Error

	if err != nil {
		logger.Log.Errorf("Failed to aggregate assessment statuses: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	byStatus := make(map[models.AssessmentStatus]int64, len(models.AssessmentStatuses))

	for _, status := range models.AssessmentStatuses {
		byStatus[status] = 0
	}

	for _, row := range statusRows {
		byStatus[row.Status] = row.Count
	}

	var levelRows []levelCountRow

	err = db.DB.Model(&models.RiskFactor{}).
		Select("risk_factors.risk_level, COUNT(*) as count").
		Joins("JOIN risk_assessments ON risk_assessments.id = risk_factors.assessment_id").
		Where("risk_assessments.project_id = ? AND risk_assessments.deleted_at IS NULL", projectID).
		Group("risk_factors.risk_level").
		Scan(&levelRows).Error

	if err != nil {
		logger.Log.Errorf("Failed to aggregate risk levels: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	byLevel := make(map[models.RiskLevel]int64, len(models.RiskLevels))

	for _, level := range models.RiskLevels {
		byLevel[level] = 0
	}

	for _, row := range levelRows {
		byLevel[row.RiskLevel] = row.Count
	}

	var monthlyRows []monthlyCountRow

	since := time.Now().AddDate(-1, 0, 0)

	err = db.DB.Model(&models.RiskAssessment{}).
		Select("EXTRACT(YEAR FROM created_at)::int as year, EXTRACT(MONTH FROM created_at)::int as month, COUNT(*) as count").
		Where("project_id = ? AND created_at >= ?", projectID, since).
		Group("year, month").
		Order("year, month").
		Scan(&monthlyRows).Error

	if err != nil {
		logger.Log.Errorf("Failed to aggregate monthly assessments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	monthly := make([]gin.H, 0, len(monthlyRows))

	for _, row := range monthlyRows {
		monthly = append(monthly, gin.H{
			"year":  row.Year,
			"month": row.Month,
			"count": row.Count,
		})
	}

	var memberCount, workerCount int64

	db.DB.Model(&models.ProjectMember{}).Where("project_id = ?", projectID).Count(&memberCount)
	db.DB.Model(&models.Worker{}).Where("project_id = ?", projectID).Count(&workerCount)

	ctx.JSON(http.StatusOK, gin.H{
		"assessments_by_status": byStatus,
		"factors_by_risk_level": byLevel,
		"assessments_monthly":   monthly,
		"member_count":          memberCount,
		"worker_count":          workerCount,
	})
}

// GetWorkerStatistics reports daily site entries over the requested window
// and the most frequently present workers.
func GetWorkerStatistics(ctx *gin.Context) {
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

	days := 30

	if raw := ctx.Query("days"); raw == "7" || raw == "14" || raw == "90" {
		switch raw {
		case "7":
			days = 7
		case "14":
			days = 14
		case "90":
			days = 90
		}
	}

	since := time.Now().AddDate(0, 0, -days)

	var dailyRows []dailyCountRow

	err = db.DB.Model(&models.WorkerCheckin{}).
		Select("DATE_TRUNC('day', worker_checkins.checkin_time) as day, COUNT(*) as count").
		Joins("JOIN workers ON workers.id = worker_checkins.worker_id").
		Where("workers.project_id = ? AND workers.deleted_at IS NULL AND worker_checkins.checkin_time >= ?", projectID, since).
		Group("day").
		Order("day").
		Scan(&dailyRows).Error

	if err != nil {
		logger.Log.Errorf("Failed to aggregate daily checkins: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	daily := make([]gin.H, 0, len(dailyRows))

	for _, row := range dailyRows {
		daily = append(daily, gin.H{
			"date":  row.Day.Format("2006-01-02"),
			"count": row.Count,
		})
	}

	var topRows []workerCountRow

	err = db.DB.Model(&models.WorkerCheckin{}).
		Select("workers.id as worker_id, workers.name, COUNT(*) as count").
		Joins("JOIN workers ON workers.id = worker_checkins.worker_id").
		Where("workers.project_id = ? AND workers.deleted_at IS NULL AND worker_checkins.checkin_time >= ?", projectID, since).
		Group("workers.id, workers.name").
		Order("count desc").
		Limit(10).
		Scan(&topRows).Error

	if err != nil {
		logger.Log.Errorf("Failed to aggregate top workers: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	top := make([]gin.H, 0, len(topRows))

	for _, row := range topRows {
		top = append(top, gin.H{
			"worker_id": row.WorkerID,
			"name":      row.Name,
			"count":     row.Count,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"days":           days,
		"daily_checkins": daily,
		"top_workers":    top,
	})
}

// GetChatbotStatistics reports daily chatbot traffic. Admin-only route.
func GetChatbotStatistics(ctx *gin.Context) {
	days := 30

	since := time.Now().AddDate(0, 0, -days)

	var dailyRows []dailyCountRow

	err := db.DB.Model(&models.ChatMessage{}).
		Select("DATE_TRUNC('day', created_at) as day, COUNT(*) as count").
		Where("created_at >= ? AND is_user_message = ?", since, true).
		Group("day").
		Order("day").
		Scan(&dailyRows).Error

	if err != nil {
		logger.Log.Errorf("Failed to aggregate chatbot traffic: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	daily := make([]gin.H, 0, len(dailyRows))

	for _, row := range dailyRows {
		daily = append(daily, gin.H{
			"date":  row.Day.Format("2006-01-02"),
			"count": row.Count,
		})
	}

	var totalMessages, totalUsers int64

	db.DB.Model(&models.ChatMessage{}).Where("is_user_message = ?", true).Count(&totalMessages)
	db.DB.Model(&models.ChatMessage{}).Distinct("user_id").Count(&totalUsers)

	ctx.JSON(http.StatusOK, gin.H{
		"days":            days,
		"daily_questions": daily,
		"total_questions": totalMessages,
		"total_users":     totalUsers,
	})
}

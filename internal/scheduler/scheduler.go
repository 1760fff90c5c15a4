// Package scheduler runs the periodic education-expiry scan. Each sweep
// finds worker educations expiring within the warning window and notifies
// the project's OWNER and ADMIN members, at most once per education per day.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/services"
)

const (
	scanInterval  = time.Hour
	warningWindow = 14 * 24 * time.Hour
)

type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	// education ID -> day it was last announced, keyed as YYYY-MM-DD
	notified map[uint]string
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		ctx:      ctx,
		cancel:   cancel,
		notified: make(map[uint]string),
	}
}

// Start runs an immediate sweep and then ticks hourly.
func (s *Scheduler) Start() {
	logger.Log.Info("Starting education expiry scheduler")

	go func() {
		s.scan()

		ticker := time.NewTicker(scanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.scan()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	logger.Log.Info("Stopping education expiry scheduler")
	s.cancel()
}

type expiringEducation struct {
	models.WorkerEducation

	WorkerName string
	ProjectID  uint
}

func (s *Scheduler) scan() {
	now := time.Now()
	deadline := now.Add(warningWindow)

	var rows []expiringEducation

	err := db.DB.Model(&models.WorkerEducation{}).
		Select("worker_educations.*, workers.name as worker_name, workers.project_id").
		Joins("JOIN workers ON workers.id = worker_educations.worker_id").
		Where("workers.deleted_at IS NULL").
		Where("worker_educations.expiry_date IS NOT NULL").
		Where("worker_educations.expiry_date BETWEEN ? AND ?", now, deadline).
		Scan(&rows).Error

	if err != nil {
		logger.Log.Errorf("Education expiry scan failed: %v", err)
		return
	}

	today := now.Format("2006-01-02")

	for _, row := range rows {
		if s.alreadyNotified(row.ID, today) {
			continue
		}

		s.notifyManagers(row)
		s.markNotified(row.ID, today)
	}

	if len(rows) > 0 {
		logger.Log.Infof("Education expiry scan found %d expiring records", len(rows))
	}
}

func (s *Scheduler) alreadyNotified(educationID uint, day string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notified[educationID] == day
}

func (s *Scheduler) markNotified(educationID uint, day string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop stale entries so the map does not grow with old days.
	for id, seen := range s.notified {
		if seen != day {
			delete(s.notified, id)
		}
	}

	s.notified[educationID] = day
}

func (s *Scheduler) notifyManagers(row expiringEducation) {
	var managers []models.ProjectMember

	err := db.DB.Where("project_id = ? AND role IN ?", row.ProjectID,
		[]models.ProjectRole{models.ProjectRoleOwner, models.ProjectRoleAdmin}).
		Find(&managers).Error

	if err != nil {
		logger.Log.Errorf("Failed to load managers for project %d: %v", row.ProjectID, err)
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"education_id": row.ID,
		"worker_id":    row.WorkerID,
		"worker_name":  row.WorkerName,
		"project_id":   row.ProjectID,
		"expiry_date":  row.ExpiryDate.Format("2006-01-02"),
	})

	if err != nil {
		logger.Log.Errorf("Failed to marshal expiry payload: %v", err)
		return
	}

	title := "안전 교육 만료 예정"
	content := fmt.Sprintf("%s님의 '%s' 교육이 %s에 만료됩니다.",
		row.WorkerName, row.Title, row.ExpiryDate.Format("2006-01-02"))
	link := fmt.Sprintf("/projects/%d/workers/%d", row.ProjectID, row.WorkerID)

	for _, manager := range managers {
		services.Notify(manager.UserID, models.NotificationTypeWorkerEducation,
			title, content, link, payload)
	}
}

var globalScheduler *Scheduler

func Initialize() {
	globalScheduler = NewScheduler()
	globalScheduler.Start()
}

func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}

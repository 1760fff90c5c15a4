package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func sampleProject() *models.Project {
	return &models.Project{
		Model:     gorm.Model{ID: 1, CreatedAt: time.Now()},
		Name:      "Test Site",
		StartDate: time.Now().AddDate(0, -3, 0),
		Status:    models.ProjectStatusActive,
	}
}

func TestRiskAssessmentPDF(t *testing.T) {
	assessment := &models.RiskAssessment{
		Model:     gorm.Model{ID: 7, CreatedAt: time.Now()},
		Title:     "Scaffold Work Assessment",
		Status:    models.AssessmentStatusApproved,
		UserID:    1,
		ProjectID: 1,
		User:      models.User{Model: gorm.Model{ID: 1}, Name: "Inspector"},
		RiskFactors: []models.RiskFactor{
			{
				Title:           "Fall from height",
				Likelihood:      4,
				Severity:        5,
				RiskLevel:       models.RiskLevelCritical,
				ControlMeasures: "Harness and safety nets",
			},
			{
				Title:      "Falling objects",
				Likelihood: 3,
				Severity:   3,
				RiskLevel:  models.RiskLevelMedium,
			},
		},
	}

	data, err := RiskAssessmentPDF(sampleProject(), assessment)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestRiskAssessmentPDFWithoutFactors(t *testing.T) {
	assessment := &models.RiskAssessment{
		Model:  gorm.Model{ID: 8, CreatedAt: time.Now()},
		Title:  "Empty Assessment",
		Status: models.AssessmentStatusDraft,
	}

	data, err := RiskAssessmentPDF(sampleProject(), assessment)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestWorkerRosterExcel(t *testing.T) {
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)

	workers := []models.Worker{
		{
			Model:    gorm.Model{ID: 1, CreatedAt: time.Now()},
			Name:     "박근로",
			Position: "비계공",
			Educations: []models.WorkerEducation{
				{
					Title:          "추락 방지 교육",
					CompletionDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
					ExpiryDate:     &expiry,
				},
			},
		},
		{
			Model: gorm.Model{ID: 2, CreatedAt: time.Now()},
			Name:  "이안전",
		},
	}

	data, err := WorkerRosterExcel(sampleProject(), workers)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Workers", "B2")
	require.NoError(t, err)
	require.Equal(t, "박근로", name)

	education, err := f.GetCellValue("Workers", "E2")
	require.NoError(t, err)
	require.Equal(t, "추락 방지 교육", education)
}

func TestLatestEducation(t *testing.T) {
	older := models.WorkerEducation{Title: "old", CompletionDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.WorkerEducation{Title: "new", CompletionDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	latest := latestEducation([]models.WorkerEducation{older, newer})
	require.NotNil(t, latest)
	require.Equal(t, "new", latest.Title)

	require.Nil(t, latestEducation(nil))
}

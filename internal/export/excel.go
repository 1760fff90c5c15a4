package export

import (
	"fmt"
	"time"

	"github.com/safework-dev/safework/internal/models"
	"github.com/xuri/excelize/v2"
)

// WorkerRosterExcel renders the worker roster with each worker's latest
// education status.
func WorkerRosterExcel(project *models.Project, workers []models.Worker) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Workers"

	index, err := f.NewSheet(sheet)

	if err != nil {
		return nil, err
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "이름", "연락처", "직책", "최근 교육", "교육 이수일", "교육 만료일", "등록일"}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)

		if err != nil {
			return nil, err
		}

		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})

	if err == nil {
		f.SetRowStyle(sheet, 1, 1, headerStyle)
	}

	for row, worker := range workers {
		values := []interface{}{
			worker.ID,
			worker.Name,
			worker.ContactNumber,
			worker.Position,
		}

		latest := latestEducation(worker.Educations)

		if latest != nil {
			values = append(values, latest.Title, latest.CompletionDate.Format("2006-01-02"))

			if latest.ExpiryDate != nil {
				values = append(values, latest.ExpiryDate.Format("2006-01-02"))
			} else {
				values = append(values, "")
			}
		} else {
			values = append(values, "", "", "")
		}

		values = append(values, worker.CreatedAt.Format("2006-01-02"))

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)

			if err != nil {
				return nil, err
			}

			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	f.SetColWidth(sheet, "B", "H", 16)

	infoSheet := "Info"

	if _, err := f.NewSheet(infoSheet); err == nil {
		f.SetCellValue(infoSheet, "A1", "프로젝트")
		f.SetCellValue(infoSheet, "B1", project.Name)
		f.SetCellValue(infoSheet, "A2", "근로자 수")
		f.SetCellValue(infoSheet, "B2", len(workers))
		f.SetCellValue(infoSheet, "A3", "생성일")
		f.SetCellValue(infoSheet, "B3", time.Now().Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()

	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// latestEducation picks the most recently completed education record.
func latestEducation(educations []models.WorkerEducation) *models.WorkerEducation {
	var latest *models.WorkerEducation

	for i := range educations {
		if latest == nil || educations[i].CompletionDate.After(latest.CompletionDate) {
			latest = &educations[i]
		}
	}

	return latest
}

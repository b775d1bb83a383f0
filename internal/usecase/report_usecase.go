package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-talentbridge-backend/internal/domain"
	"go-talentbridge-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

// exportPageSize bounds a single export; larger datasets page through the
// offset filter.
const exportPageSize = 5000

var reportColumns = []string{
	"ID", "TITLE", "TYPE", "COMPANY ID", "CANDIDATE ID", "SCHEDULED DATE",
	"STATUS", "ADMIN STATUS", "FEEDBACK STATUS",
	"TECHNICAL", "COMMUNICATION", "EXPERIENCE", "OVERALL", "CANDIDATE RATING",
}

type reportUsecase struct {
	interviewRepo domain.InterviewRepository
}

// NewReportUsecase creates the admin export service.
func NewReportUsecase(interviewRepo domain.InterviewRepository) domain.ReportUsecase {
	return &reportUsecase{interviewRepo: interviewRepo}
}

// ExportInterviews renders matching interviews with both feedback sets.
// Admin only.
func (uc *reportUsecase) ExportInterviews(ctx context.Context, format string, filter domain.InterviewFilter) ([]byte, string, error) {
	actor, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, "", apperror.Unauthorized("User not authenticated")
	}
	if actor.Role != domain.RoleAdmin {
		return nil, "", apperror.Forbidden("Only admin actors can export reports")
	}

	filter.Limit = exportPageSize
	interviews, _, err := uc.interviewRepo.Find(ctx, filter)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	switch format {
	case "csv":
		return exportCSV(interviews)
	case "xlsx", "":
		return exportExcel(interviews)
	default:
		return nil, "", apperror.BadRequest(fmt.Sprintf("Unsupported export format: %s", format))
	}
}

// exportExcel generates an Excel workbook from interview data.
func exportExcel(interviews []domain.Interview) ([]byte, string, error) {
	f := excelize.NewFile()
	sheetName := "Interviews"
	f.SetSheetName("Sheet1", sheetName)

	for i, col := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	// Style headers - dark blue background with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, iv := range interviews {
		for colIdx, value := range reportRow(iv) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range reportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("interviews_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

// exportCSV generates a CSV file from interview data.
func exportCSV(interviews []domain.Interview) ([]byte, string, error) {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(reportColumns, ",") + "\n")

	for _, iv := range interviews {
		values := make([]string, 0, len(reportColumns))
		for _, v := range reportRow(iv) {
			s := fmt.Sprintf("%v", v)
			if strings.ContainsAny(s, ",\"\n") {
				s = `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
			}
			values = append(values, s)
		}
		buf.WriteString(strings.Join(values, ",") + "\n")
	}

	filename := fmt.Sprintf("interviews_%s.csv", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func reportRow(iv domain.Interview) []interface{} {
	score := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}

	var technical, communication, experience, overall, rating string
	if iv.CompanyFeedback != nil {
		technical = score(iv.CompanyFeedback.Technical)
		communication = score(iv.CompanyFeedback.Communication)
		experience = score(iv.CompanyFeedback.Experience)
		overall = score(iv.CompanyFeedback.Overall)
	}
	if iv.CandidateFeedback != nil {
		rating = score(iv.CandidateFeedback.Rating)
	}

	return []interface{}{
		iv.ID,
		iv.Title,
		iv.Type,
		iv.CompanyID,
		iv.CandidateID,
		iv.ScheduledDate.Format(time.RFC3339),
		string(iv.Status),
		string(iv.AdminStatus),
		string(iv.FeedbackStatus),
		technical,
		communication,
		experience,
		overall,
		rating,
	}
}

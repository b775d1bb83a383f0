package domain

import "context"

// ReportUsecase exports interview and feedback data for administrators.
type ReportUsecase interface {
	// ExportInterviews renders the matching interviews in the given format
	// ("xlsx" or "csv"), returning the file bytes and a suggested filename.
	ExportInterviews(ctx context.Context, format string, filter InterviewFilter) ([]byte, string, error)
}

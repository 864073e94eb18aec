package handler

import (
	"time"

	"github.com/palemoky/contentiq/internal/database"
)

// formatAnalysis formats an analysis for API response. The result is only
// present once the analysis is complete.
func formatAnalysis(a *database.Analysis) map[string]any {
	result := map[string]any{
		"id":         a.ID,
		"url":        a.URL,
		"state":      a.State,
		"created_at": a.CreatedAt.Format(time.RFC3339),
	}
	if a.StartedAt != nil {
		result["started_at"] = a.StartedAt.Format(time.RFC3339Nano)
	}
	if a.CompletedAt != nil {
		result["completed_at"] = a.CompletedAt.Format(time.RFC3339Nano)
	}
	if a.Error != "" {
		result["error"] = a.Error
	}
	if bundle := a.Result(); bundle != nil {
		result["result"] = bundle
	}
	return result
}

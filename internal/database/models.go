package database

import (
	"time"

	"gorm.io/datatypes"

	"github.com/palemoky/contentiq/internal/estimator"
)

// State is where an analysis is in its lifecycle
type State string

const (
	// StateIdle means no bundle has been requested yet
	StateIdle State = "idle"
	// StateAnalyzing means the artificial delay is running
	StateAnalyzing State = "analyzing"
	// StateComplete means the bundle is available
	StateComplete State = "complete"
)

// Analysis is one transient estimate request for a URL
type Analysis struct {
	ID          string                                      `gorm:"primaryKey;size:36"     json:"id"`
	URL         string                                      `gorm:"not null"               json:"url"`
	State       State                                       `gorm:"not null;size:16;index" json:"state"`
	Bundle      datatypes.JSONType[estimator.MetricBundle] `gorm:"not null"               json:"-"`
	Error       string                                      `                              json:"error,omitempty"`
	StartedAt   *time.Time                                  `                              json:"started_at,omitempty"`
	CompletedAt *time.Time                                  `                              json:"completed_at,omitempty"`
	CreatedAt   time.Time                                   `gorm:"autoCreateTime;index"   json:"created_at"`
	UpdatedAt   time.Time                                   `gorm:"autoUpdateTime"         json:"updated_at"`
}

// TableName specifies the table name for Analysis
func (Analysis) TableName() string {
	return "analyses"
}

// Result returns the bundle once the analysis is complete, nil otherwise.
func (a *Analysis) Result() *estimator.MetricBundle {
	if a.State != StateComplete {
		return nil
	}
	b := a.Bundle.Data()
	return &b
}

// Statistics summarizes the analyses currently held
type Statistics struct {
	TotalAnalyses int64           `json:"total_analyses"`
	ByState       map[State]int64 `json:"by_state"`
}

package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no analysis matches the given ID
var ErrNotFound = errors.New("analysis not found")

// Repository handles analysis persistence
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateAnalysis inserts a new analysis
func (r *Repository) CreateAnalysis(ctx context.Context, a *Analysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// GetAnalysis fetches an analysis by ID
func (r *Repository) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	var a Analysis
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAnalysis writes every column of a back
func (r *Repository) SaveAnalysis(ctx context.Context, a *Analysis) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// DeleteAnalysesBefore removes analyses created before cutoff.
// Analyses still in the analyzing state are left alone.
func (r *Repository) DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ? AND state <> ?", cutoff, StateAnalyzing).
		Delete(&Analysis{})
	return res.RowsAffected, res.Error
}

// GetStatistics counts analyses per state
func (r *Repository) GetStatistics(ctx context.Context) (*Statistics, error) {
	var rows []struct {
		State State
		Count int64
	}

	err := r.db.WithContext(ctx).
		Model(&Analysis{}).
		Select("state, COUNT(*) as count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Statistics{ByState: map[State]int64{
		StateIdle:      0,
		StateAnalyzing: 0,
		StateComplete:  0,
	}}
	for _, row := range rows {
		stats.ByState[row.State] = row.Count
		stats.TotalAnalyses += row.Count
	}

	return stats, nil
}

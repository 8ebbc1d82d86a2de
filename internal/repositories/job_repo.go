package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/alexmontero/ocr-pipeline-be/internal/models"
)

// JobRepo persists the processing history.
type JobRepo interface {
	Create(ctx context.Context, job *models.OCRJob) error
	List(ctx context.Context, limit, offset int) ([]models.OCRJob, error)
	Statistics(ctx context.Context) (*models.JobStatistics, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo returns the Postgres-backed history repository.
func NewJobRepo(db *gorm.DB) JobRepo {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *models.OCRJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) List(ctx context.Context, limit, offset int) ([]models.OCRJob, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var jobs []models.OCRJob
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepo) Statistics(ctx context.Context) (*models.JobStatistics, error) {
	stats := &models.JobStatistics{ByProvider: make(map[string]int64)}

	if err := r.db.WithContext(ctx).Model(&models.OCRJob{}).Count(&stats.TotalJobs).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.OCRJob{}).
		Where("success = ?", true).Count(&stats.Succeeded).Error; err != nil {
		return nil, err
	}

	var avg *float64
	if err := r.db.WithContext(ctx).Model(&models.OCRJob{}).
		Where("success = ?", true).
		Select("AVG(confidence)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AvgConfidence = *avg
	}

	type providerCount struct {
		Provider string
		Count    int64
	}
	var counts []providerCount
	if err := r.db.WithContext(ctx).Model(&models.OCRJob{}).
		Select("provider, COUNT(*) as count").
		Where("provider <> ''").
		Group("provider").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByProvider[c.Provider] = c.Count
	}

	return stats, nil
}

func (r *jobRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.OCRJob{})
	return result.RowsAffected, result.Error
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/maxaizer/upwork-hunter/internal/entities"
	"gorm.io/gorm"
)

type ProcessedJobs struct {
	db *gorm.DB
}

func NewProcessedJobsRepository(db *gorm.DB) *ProcessedJobs {
	return &ProcessedJobs{db: db}
}

func (p ProcessedJobs) IsProcessed(ctx context.Context, jobID string) (bool, error) {
	var job entities.ProcessedJob
	err := p.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		First(&job).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p ProcessedJobs) Record(ctx context.Context, jobID string, title string, docURL string) error {
	return p.db.WithContext(ctx).Create(&entities.ProcessedJob{
		JobID:  jobID,
		Title:  title,
		DocURL: docURL,
	}).Error
}

func (p ProcessedJobs) RemoveOld(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := p.db.WithContext(ctx).Delete(&entities.ProcessedJob{}, "created_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}

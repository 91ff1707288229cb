package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pollyhq/pollycoach/internal/models"
	"github.com/pollyhq/pollycoach/internal/utils"
)

type PracticeRepo interface {
	Insert(ctx context.Context, rec *models.PracticeRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.PracticeRecord, error)
	Recent(ctx context.Context, limit int) ([]models.PracticeRecord, error)
	Stats(ctx context.Context) (models.UserStats, error)
}

type practiceRepo struct {
	db *gorm.DB
}

func NewPracticeRepo(db *gorm.DB) PracticeRepo {
	return &practiceRepo{db: db}
}

func (r *practiceRepo) Insert(ctx context.Context, rec *models.PracticeRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *practiceRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.PracticeRecord, error) {
	var row models.PracticeRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *practiceRepo) Recent(ctx context.Context, limit int) ([]models.PracticeRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.PracticeRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *practiceRepo) Stats(ctx context.Context) (models.UserStats, error) {
	var out models.UserStats
	err := r.db.WithContext(ctx).
		Model(&models.PracticeRecord{}).
		Select("COUNT(*) AS total_sessions, " +
			"COALESCE(AVG(confidence_score), 0) AS average_confidence, " +
			"COALESCE(AVG(overall_score), 0) AS average_score, " +
			"COALESCE(SUM(word_count), 0) AS total_words_spoken").
		Scan(&out).Error
	return out, err
}

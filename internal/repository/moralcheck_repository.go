package repository

import (
	"context"

	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
)

type moralCheckRepository struct {
	db *gorm.DB
}

func (r *moralCheckRepository) CreateLog(ctx context.Context, log *models.MoralCheckLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *moralCheckRepository) ListLogs(ctx context.Context, parentID string, kind models.MoralCheckParentKind) ([]models.MoralCheckLog, error) {
	var logs []models.MoralCheckLog
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND parent_kind = ?", parentID, kind).
		Order("timestamp ASC").
		Find(&logs).Error
	return logs, err
}

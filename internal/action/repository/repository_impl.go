package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/action/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, action *domain.Action) error {
	if action == nil {
		return nil
	}
	return db.WithContext(ctx).Create(action).Error
}

func (r *repo) ListByTarget(ctx context.Context, db *gorm.DB, targetType domain.TargetType, targetID snowflake.ID) ([]domain.Action, error) {
	var actions []domain.Action
	err := db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at asc, id asc").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}

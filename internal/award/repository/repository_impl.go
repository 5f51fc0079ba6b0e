package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Award, error) {
	var award domain.Award
	err := db.WithContext(ctx).First(&award, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &award, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, award *domain.Award) error {
	return db.WithContext(ctx).Create(award).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, award *domain.Award) error {
	return db.WithContext(ctx).Save(award).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.Award, int64, error) {
	query := db.WithContext(ctx).Model(&domain.Award{})

	if filter.Status != domain.StatusAll {
		status := filter.Status
		if status == "" {
			status = string(domain.StatusAwarded)
		}
		query = query.Where("status = ?", status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.DocumentID != "" {
		query = query.Where("document_id = ?", filter.DocumentID)
	}
	if filter.Source != "" {
		query = query.Where("source LIKE ?", "%"+filter.Source+"%")
	}
	if filter.Description != "" {
		query = query.Where("description LIKE ?", "%"+filter.Description+"%")
	}
	if filter.Nominate != 0 {
		query = query.Where("nominate = ?", filter.Nominate)
	}
	if filter.Awarder != 0 {
		query = query.Where("awarder = ?", filter.Awarder)
	}
	if filter.DateBefore != nil {
		query = query.Where("date < ?", *filter.DateBefore)
	}
	if filter.DateAfter != nil {
		query = query.Where("date >= ?", *filter.DateAfter)
	}
	switch filter.Economy {
	case categorydomain.TypeVIP:
		query = query.Where("vip <> 0")
	case categorydomain.TypePrestige:
		query = query.Where("vip = 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var awards []domain.Award
	err := query.
		Order("date desc, id desc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&awards).Error
	if err != nil {
		return nil, 0, err
	}
	return awards, total, nil
}

func (r *repo) ListUnlinkedAwarded(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Award, error) {
	var awards []domain.Award
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND mc_review_id = 0 AND vip = 0", userID, domain.StatusAwarded).
		Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *repo) LinkReview(ctx context.Context, db *gorm.DB, userID int64, reviewID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Award{}).
		Where("user_id = ? AND status = ? AND mc_review_id = 0 AND vip = 0", userID, domain.StatusAwarded).
		Update("mc_review_id", reviewID).Error
}

func (r *repo) UnlinkReview(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Award{}).
		Where("mc_review_id = ?", reviewID).
		Update("mc_review_id", 0).Error
}

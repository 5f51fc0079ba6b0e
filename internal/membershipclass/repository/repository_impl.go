package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/membershipclass/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MembershipClass, error) {
	var class domain.MembershipClass
	err := db.WithContext(ctx).First(&class, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &class, nil
}

func (r *repo) FindHighestActive(ctx context.Context, db *gorm.DB, userID int64, level int) (*domain.MembershipClass, error) {
	var class domain.MembershipClass
	err := db.WithContext(ctx).
		Where("user_id = ? AND level >= ? AND status <> ?", userID, level, domain.StatusRemoved).
		Order("level desc").
		First(&class).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &class, nil
}

func (r *repo) HighestApprovedLevel(ctx context.Context, db *gorm.DB, userID int64) (int, error) {
	var level int
	err := db.WithContext(ctx).
		Model(&domain.MembershipClass{}).
		Select("COALESCE(MAX(level), 1)").
		Where("user_id = ? AND status = ?", userID, domain.StatusApproved).
		Scan(&level).Error
	if err != nil {
		return 0, err
	}
	if level < 1 {
		level = 1
	}
	return level, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, class *domain.MembershipClass) error {
	return db.WithContext(ctx).Create(class).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, class *domain.MembershipClass) error {
	return db.WithContext(ctx).Save(class).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.MembershipClass, int64, error) {
	query := db.WithContext(ctx).Model(&domain.MembershipClass{})

	if filter.Status != domain.StatusAll {
		status := filter.Status
		if status == "" {
			status = string(domain.StatusApproved)
		}
		query = query.Where("status = ?", status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Level != 0 {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Office != 0 {
		query = query.Where("office = ?", filter.Office)
	}
	if filter.DateBefore != nil {
		query = query.Where("date < ?", *filter.DateBefore)
	}
	if filter.DateAfter != nil {
		query = query.Where("date >= ?", *filter.DateAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var classes []domain.MembershipClass
	err := query.
		Order("date desc, id desc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&classes).Error
	if err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

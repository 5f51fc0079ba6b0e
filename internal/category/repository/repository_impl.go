package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/category/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Category, error) {
	var category domain.Category
	err := db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Category, error) {
	stmt := db.WithContext(ctx).Model(&domain.Category{})

	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.On != nil {
		on := filter.On.UTC()
		stmt = stmt.Where("start_date <= ?", on).
			Where("end_date IS NULL OR end_date >= ?", on)
	}

	var categories []domain.Category
	if err := stmt.Order("start_date desc, id desc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

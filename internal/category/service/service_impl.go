package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/category/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("category.service"),
		repo: p.Repo,
	}
}

func (s *Service) FindValid(ctx context.Context, id snowflake.ID, onDate time.Time, economy domain.Type) (*domain.Category, error) {
	category, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !category.ValidOn(onDate.UTC()) {
		return nil, domain.ErrNotFound
	}
	if economy != "" && category.Type != economy {
		return nil, domain.ErrNotFound
	}
	return category, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Category, error) {
	return s.repo.List(ctx, s.db, filter)
}

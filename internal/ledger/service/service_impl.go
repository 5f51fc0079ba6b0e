package service

import (
	"context"

	"github.com/clubworks/prestige/internal/ledger/domain"
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
		log:  p.Log.Named("ledger.service"),
		repo: p.Repo,
	}
}

func (s *Service) Totals(ctx context.Context, userID int64) (domain.Totals, error) {
	return s.repo.Totals(ctx, s.db, userID)
}

func (s *Service) VIPTotals(ctx context.Context, userID int64) (domain.VIPTotals, error) {
	return s.repo.VIPTotals(ctx, s.db, userID)
}

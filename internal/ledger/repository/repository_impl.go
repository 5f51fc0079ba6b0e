package repository

import (
	"context"

	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	"github.com/clubworks/prestige/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Totals(ctx context.Context, db *gorm.DB, userID int64) (domain.Totals, error) {
	var totals domain.Totals
	err := db.WithContext(ctx).Model(&awarddomain.Award{}).
		Select(`COALESCE(SUM(usable_general), 0) AS general,
			COALESCE(SUM(usable_regional), 0) AS regional,
			COALESCE(SUM(usable_national), 0) AS national`).
		Where("user_id = ?", userID).
		Where("status = ?", awarddomain.StatusAwarded).
		Where("vip = 0").
		Scan(&totals).Error
	if err != nil {
		return domain.Totals{}, err
	}
	totals.Total = totals.General + totals.Regional + totals.National
	return totals, nil
}

func (r *repo) VIPTotals(ctx context.Context, db *gorm.DB, userID int64) (domain.VIPTotals, error) {
	var totals domain.VIPTotals
	err := db.WithContext(ctx).Model(&awarddomain.Award{}).
		Select(`COALESCE(SUM(CASE WHEN usable_vip > 0 THEN usable_vip ELSE 0 END), 0) AS gained,
			COALESCE(SUM(CASE WHEN usable_vip < 0 THEN -usable_vip ELSE 0 END), 0) AS spent,
			COALESCE(SUM(usable_vip), 0) AS total`).
		Where("user_id = ?", userID).
		Where("status = ?", awarddomain.StatusAwarded).
		Where("vip <> 0").
		Scan(&totals).Error
	if err != nil {
		return domain.VIPTotals{}, err
	}
	return totals, nil
}

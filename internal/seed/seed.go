package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	pkgdb "github.com/clubworks/prestige/pkg/db"
	"gorm.io/gorm"
)

// EnsureDefaultCategories seeds the standard award categories so a fresh
// development install can record awards immediately. Existing categories are
// left untouched.
func EnsureDefaultCategories(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&categorydomain.Category{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		start := time.Date(2013, time.June, 1, 0, 0, 0, 0, time.UTC)
		categories := []categorydomain.Category{
			{Name: "Administration", TotalLimit: 80, EntryLimit: 50, StartDate: start, Type: categorydomain.TypePrestige},
			{Name: "Non-Administrative Game Support", TotalLimit: 50, EntryLimit: 30, StartDate: start, Type: categorydomain.TypePrestige},
			{Name: "Social/Non-Game Support", TotalLimit: 50, EntryLimit: 30, StartDate: start, Type: categorydomain.TypePrestige},
			{Name: "Convention Events", TotalLimit: 100, EntryLimit: 100, StartDate: start, Type: categorydomain.TypePrestige},
			{Name: "Standards and Renewals", StartDate: start, Type: categorydomain.TypePrestige},
			{Name: "VIP Rewards", EntryLimit: 100, StartDate: start, Type: categorydomain.TypeVIP},
		}
		for i := range categories {
			categories[i].ID = node.Generate()
		}
		// Concurrent instances may race on first boot; the loser's insert
		// is safe to drop.
		if err := tx.Create(&categories).Error; err != nil && !pkgdb.IsDuplicateKeyErr(err) {
			return err
		}
		return nil
	})
}

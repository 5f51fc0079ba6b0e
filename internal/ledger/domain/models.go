package domain

import (
	"context"

	"gorm.io/gorm"
)

// Totals is a member's aggregate prestige position. Only the usable (capped)
// figures of Awarded, prestige-economy awards count; requested, nominated and
// removed awards are excluded.
type Totals struct {
	General  int64 `json:"general"`
	Regional int64 `json:"regional"`
	National int64 `json:"national"`
	Total    int64 `json:"total"`
}

// VIPTotals is a member's position in the vip point economy: points gained,
// points spent (deductions, reported as a positive figure) and the signed sum.
type VIPTotals struct {
	Gained int64 `json:"gained"`
	Spent  int64 `json:"spent"`
	Total  int64 `json:"total"`
}

// Repository reads aggregates straight from the awards table. Callers pass
// the handle so the same reads work inside a transaction; nothing is cached,
// every call reflects the state the handle sees.
type Repository interface {
	Totals(ctx context.Context, db *gorm.DB, userID int64) (Totals, error)
	VIPTotals(ctx context.Context, db *gorm.DB, userID int64) (VIPTotals, error)
}

type Service interface {
	Totals(ctx context.Context, userID int64) (Totals, error)
	VIPTotals(ctx context.Context, userID int64) (VIPTotals, error)
}

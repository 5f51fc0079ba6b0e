package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Type separates the two point economies a category can feed.
type Type string

const (
	TypePrestige Type = "prestige"
	TypeVIP      Type = "vip"
)

// Category is a named point bucket valid over a date window. EntryLimit caps
// how many usable points a single award against the category may contribute.
type Category struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"not null" json:"name"`
	TotalLimit int64        `gorm:"column:total_limit" json:"total_limit"`
	EntryLimit int64        `gorm:"column:entry_limit" json:"entry_limit"`
	StartDate  time.Time    `gorm:"column:start_date;not null;index" json:"start_date"`
	EndDate    *time.Time   `gorm:"column:end_date;index" json:"end_date,omitempty"`
	Type       Type         `gorm:"not null;default:prestige;index" json:"type"`
}

func (Category) TableName() string {
	return "categories"
}

// ValidOn reports whether the category's window covers the date. The window
// is inclusive on both ends; a nil EndDate means the category is still open.
func (c Category) ValidOn(date time.Time) bool {
	if date.Before(c.StartDate) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(date)
}

type ListFilter struct {
	Type Type
	On   *time.Time
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Category, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Category, error)
}

type Service interface {
	// FindValid resolves a category that is active on the given date and
	// belongs to the given economy.
	FindValid(ctx context.Context, id snowflake.ID, onDate time.Time, economy Type) (*Category, error)
	List(ctx context.Context, filter ListFilter) ([]Category, error)
}

var ErrNotFound = errors.New("category_not_found")

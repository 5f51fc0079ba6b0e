package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/clubworks/prestige/internal/hub"
	"github.com/clubworks/prestige/pkg/db/pagination"
	"gorm.io/gorm"
)

// Status is an award's position in its lifecycle. Denied is terminal and is
// how removed awards are kept on the books without counting toward totals.
type Status string

const (
	StatusRequested Status = "Requested"
	StatusNominated Status = "Nominated"
	StatusAwarded   Status = "Awarded"
	StatusDenied    Status = "Denied"
)

// Award is a single grant (or, with negative figures, deduction) of points to
// a member. The general/regional/national columns carry the requested figures;
// the usable_* columns carry the figures after the category's per-entry cap,
// and only those feed the ledger. An award belongs to exactly one economy:
// vip when the vip column is non-zero, prestige otherwise.
type Award struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID         int64        `gorm:"column:user_id;not null;index" json:"user"`
	Description    string       `gorm:"column:description;not null" json:"description"`
	Source         string       `gorm:"column:source" json:"source,omitempty"`
	CategoryID     snowflake.ID `gorm:"column:category_id;not null;index" json:"category"`
	Date           time.Time    `gorm:"column:date;not null;index" json:"date"`
	Modified       time.Time    `gorm:"column:modified" json:"modified"`
	Nominate       int64        `gorm:"column:nominate" json:"nominate,omitempty"`
	Awarder        int64        `gorm:"column:awarder" json:"awarder,omitempty"`
	DocumentID     string       `gorm:"column:document_id;index" json:"document_id,omitempty"`
	MCReviewID     snowflake.ID `gorm:"column:mc_review_id;index" json:"mc_review_id,omitempty"`
	Status         Status       `gorm:"column:status;not null;index" json:"status"`
	General        int64        `gorm:"column:general" json:"general"`
	Regional       int64        `gorm:"column:regional" json:"regional"`
	National       int64        `gorm:"column:national" json:"national"`
	UsableGeneral  int64        `gorm:"column:usable_general" json:"usable_general"`
	UsableRegional int64        `gorm:"column:usable_regional" json:"usable_regional"`
	UsableNational int64        `gorm:"column:usable_national" json:"usable_national"`
	VIP            int64        `gorm:"column:vip" json:"vip"`
	UsableVIP      int64        `gorm:"column:usable_vip" json:"usable_vip"`
}

func (Award) TableName() string {
	return "awards"
}

// Economy reports which point economy the award belongs to.
func (a Award) Economy() categorydomain.Type {
	if a.VIP != 0 {
		return categorydomain.TypeVIP
	}
	return categorydomain.TypePrestige
}

// Tier returns the prestige tier the award's points sit in, or the empty tier
// for vip awards.
func (a Award) Tier() hub.Tier {
	switch {
	case a.General != 0:
		return hub.TierGeneral
	case a.Regional != 0:
		return hub.TierRegional
	case a.National != 0:
		return hub.TierNational
	}
	return ""
}

// Terminal reports whether the award can no longer change.
func (a Award) Terminal() bool {
	return a.Status == StatusDenied
}

// Input is the submitted shape of a create or update. Usable figures may be
// supplied only by an awarder; they are still subject to the category cap.
type Input struct {
	UserID         int64        `json:"user"`
	Description    string       `json:"description"`
	Source         string       `json:"source"`
	CategoryID     snowflake.ID `json:"category"`
	Date           time.Time    `json:"date"`
	DocumentID     string       `json:"document_id"`
	Action         hub.Action   `json:"action"`
	General        int64        `json:"general"`
	Regional       int64        `json:"regional"`
	National       int64        `json:"national"`
	UsableGeneral  int64        `json:"usable_general"`
	UsableRegional int64        `json:"usable_regional"`
	UsableNational int64        `json:"usable_national"`
	VIP            int64        `json:"vip"`
	UsableVIP      int64        `json:"usable_vip"`
	Note           string       `json:"note"`
}

// Filter selects awards for listing. Zero values mean "not filtered";
// StatusAll bypasses the status filter entirely.
type Filter struct {
	Status      string
	UserID      int64
	CategoryID  snowflake.ID
	DocumentID  string
	Source      string
	Description string
	Nominate    int64
	Awarder     int64
	DateBefore  *time.Time
	DateAfter   *time.Time
	Economy     categorydomain.Type
	Page        pagination.Pagination
}

// StatusAll disables the default Awarded status filter.
const StatusAll = "all"

type ListResponse struct {
	Awards []Award             `json:"results"`
	Page   pagination.PageInfo `json:"page"`
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Award, error)
	Insert(ctx context.Context, db *gorm.DB, award *Award) error
	Update(ctx context.Context, db *gorm.DB, award *Award) error
	List(ctx context.Context, db *gorm.DB, filter Filter) ([]Award, int64, error)

	// ListUnlinkedAwarded returns the member's Awarded, prestige-economy
	// awards not yet attached to a membership-class review.
	ListUnlinkedAwarded(ctx context.Context, db *gorm.DB, userID int64) ([]Award, error)

	// LinkReview attaches every award ListUnlinkedAwarded would return to
	// the given review.
	LinkReview(ctx context.Context, db *gorm.DB, userID int64, reviewID snowflake.ID) error

	// UnlinkReview detaches all awards of the given review.
	UnlinkReview(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) error
}

type Service interface {
	Create(ctx context.Context, input Input) (*Award, error)
	Update(ctx context.Context, id snowflake.ID, input Input) (*Award, error)
	Remove(ctx context.Context, id snowflake.ID, note string) (*Award, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Award, error)
	List(ctx context.Context, filter Filter) (*ListResponse, error)
}

// ReviewResetter re-evaluates a membership-class review after an award it
// draws on is changed or removed. It runs on the caller's transaction handle
// so it sees the in-flight award mutation.
type ReviewResetter interface {
	Reset(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) error
}

var (
	ErrNotFound          = errors.New("award_not_found")
	ErrUserRequired      = errors.New("user_required")
	ErrCategoryRequired  = errors.New("category_required")
	ErrDateRequired      = errors.New("date_required")
	ErrDescriptionEmpty  = errors.New("description_required")
	ErrNoPoints          = errors.New("no_prestige_awarded")
	ErrMixedPoints       = errors.New("multiple_point_tiers")
	ErrInvalidSign       = errors.New("invalid_point_sign")
	ErrInvalidAction     = errors.New("invalid_action")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrModifyOwnApproved = errors.New("cannot_modify_own_approved_award")
	ErrAlreadyRemoved    = errors.New("award_already_removed")
)

package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/config"
	"github.com/clubworks/prestige/internal/hub"
	"github.com/clubworks/prestige/pkg/db/pagination"
	"gorm.io/gorm"
)

// Status is a review's position in its lifecycle. Approved and Removed are
// terminal.
type Status string

const (
	StatusRequested Status = "Requested"
	StatusReviewing Status = "Reviewing"
	StatusApproved  Status = "Approved"
	StatusRemoved   Status = "Removed"
)

// Stage is the review stage a class currently sits at. Reviews climb
// Domain, Regional, National; a level's configured officer stage may finish
// the review early.
type Stage string

const (
	StageDomain   Stage = "Domain"
	StageRegional Stage = "Regional"
	StageNational Stage = "National"
)

// Next returns the stage after this one. National is the last stage and
// returns itself.
func (s Stage) Next() Stage {
	switch s {
	case StageDomain:
		return StageRegional
	case StageRegional:
		return StageNational
	}
	return StageNational
}

// Tier maps the stage onto the capability tier used in approve roles.
func (s Stage) Tier() hub.Tier {
	return hub.Tier(strings.ToLower(string(s)))
}

// ParseStage reads a stage name case-insensitively.
func ParseStage(raw string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "domain":
		return StageDomain, nil
	case "regional":
		return StageRegional, nil
	case "national":
		return StageNational, nil
	}
	return "", ErrInvalidStage
}

// MembershipClass is one review of a member toward a class level. The
// general/regional/national columns snapshot the member's ledger totals at
// request time; approvals re-check requirements against this snapshot, not
// the live ledger.
type MembershipClass struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID   int64        `gorm:"column:user_id;not null;index" json:"user"`
	Date     time.Time    `gorm:"column:date;not null;index" json:"date"`
	Level    int          `gorm:"column:level;not null;index" json:"level"`
	General  int64        `gorm:"column:general" json:"general"`
	Regional int64        `gorm:"column:regional" json:"regional"`
	National int64        `gorm:"column:national" json:"national"`
	Status   Status       `gorm:"column:status;not null;index" json:"status"`
	Stage    Stage        `gorm:"column:current_stage;not null" json:"current_stage"`
	Office   int64        `gorm:"column:office" json:"office,omitempty"`
}

func (MembershipClass) TableName() string {
	return "mc"
}

// Terminal reports whether the review can no longer move.
func (m MembershipClass) Terminal() bool {
	return m.Status == StatusApproved || m.Status == StatusRemoved
}

// MeetsRequirement checks the snapshotted totals against a level
// requirement. The general figure counts all snapshot tiers, regional counts
// regional plus national, national stands alone. The top level has no
// requirement.
func (m MembershipClass) MeetsRequirement(req config.LevelRequirement) bool {
	if m.Level == config.TopLevel {
		return true
	}
	if req.National > m.National {
		return false
	}
	if req.Regional > m.Regional+m.National {
		return false
	}
	return req.General <= m.General+m.Regional+m.National
}

// StatusAll disables the default Approved status filter.
const StatusAll = "all"

type Filter struct {
	Status     string
	UserID     int64
	Level      int
	Office     int64
	DateBefore *time.Time
	DateAfter  *time.Time
	Page       pagination.Pagination
}

type ListResponse struct {
	Classes []MembershipClass   `json:"results"`
	Page    pagination.PageInfo `json:"page"`
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MembershipClass, error)

	// FindHighestActive returns the member's highest non-Removed review at
	// or above the given level, or nil when there is none.
	FindHighestActive(ctx context.Context, db *gorm.DB, userID int64, level int) (*MembershipClass, error)

	// HighestApprovedLevel returns the member's highest Approved class
	// level. Every member holds level 1 implicitly.
	HighestApprovedLevel(ctx context.Context, db *gorm.DB, userID int64) (int, error)

	Insert(ctx context.Context, db *gorm.DB, class *MembershipClass) error
	Update(ctx context.Context, db *gorm.DB, class *MembershipClass) error
	List(ctx context.Context, db *gorm.DB, filter Filter) ([]MembershipClass, int64, error)
}

type Service interface {
	Create(ctx context.Context, userID int64, level int) (*MembershipClass, error)
	Approve(ctx context.Context, id snowflake.ID, stage string, note string) (*MembershipClass, error)
	Remove(ctx context.Context, id snowflake.ID, note string) (*MembershipClass, error)
	GetByID(ctx context.Context, id snowflake.ID) (*MembershipClass, error)
	List(ctx context.Context, filter Filter) (*ListResponse, error)
	HighestLevel(ctx context.Context, userID int64) (int, error)
	Levels() config.LevelTable
}

var (
	ErrNotFound             = errors.New("membership_class_not_found")
	ErrLevelOne             = errors.New("all_members_have_level_one")
	ErrInvalidLevel         = errors.New("invalid_level")
	ErrAlreadyAtLevel       = errors.New("already_has_level")
	ErrAlreadyHigherLevel   = errors.New("already_higher_level")
	ErrInsufficientPrestige = errors.New("insufficient_prestige")
	ErrInvalidStage         = errors.New("invalid_stage")
	ErrStageMismatch        = errors.New("stage_mismatch")
	ErrAlreadyApproved      = errors.New("class_already_approved")
	ErrClassRemoved         = errors.New("class_removed")
	ErrAlreadyRemoved       = errors.New("class_already_removed")
)

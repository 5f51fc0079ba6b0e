package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TargetType tags which entity an action refers to. An action references
// exactly one target; the (type, id) pair replaces a pair of nullable
// foreign keys.
type TargetType string

const (
	TargetAward           TargetType = "award"
	TargetMembershipClass TargetType = "mc"
)

// Label names what happened. It mirrors the target's resulting status, or
// Modified when the status did not change.
type Label string

const (
	LabelRequested Label = "Requested"
	LabelNominated Label = "Nominated"
	LabelAwarded   Label = "Awarded"
	LabelModified  Label = "Modified"
	LabelRemoved   Label = "Removed"
)

// Action is one immutable audit record. Previous snapshots the target's
// state before the transition; rows are never updated or deleted.
type Action struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	TargetType TargetType        `gorm:"column:target_type;not null;index:idx_actions_target" json:"target_type"`
	TargetID   snowflake.ID      `gorm:"column:target_id;not null;index:idx_actions_target" json:"target_id"`
	Office     int64             `gorm:"column:office;not null" json:"office"`
	UserID     int64             `gorm:"column:user_id;not null" json:"user_id"`
	Label      Label             `gorm:"column:label;not null" json:"label"`
	Previous   datatypes.JSONMap `gorm:"column:previous" json:"previous,omitempty"`
	Note       string            `gorm:"column:note" json:"note,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at;not null" json:"created_at"`
}

func (Action) TableName() string {
	return "actions"
}

// Entry is what a workflow submits when it records a transition. Previous is
// the pre-transition entity; it is snapshotted as JSON.
type Entry struct {
	TargetType TargetType
	TargetID   snowflake.ID
	Office     int64
	Label      Label
	Previous   any
	Note       string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, action *Action) error
	ListByTarget(ctx context.Context, db *gorm.DB, targetType TargetType, targetID snowflake.ID) ([]Action, error)
}

// Service appends audit entries. Record takes the database handle so a
// workflow can write the entry inside the same transaction as the state
// change it documents.
type Service interface {
	Record(ctx context.Context, db *gorm.DB, entry Entry) error
	ListByTarget(ctx context.Context, targetType TargetType, targetID snowflake.ID) ([]Action, error)
}

var ErrInvalidTarget = errors.New("invalid_action_target")

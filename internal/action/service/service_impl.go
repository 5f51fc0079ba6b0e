package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/action/domain"
	"github.com/clubworks/prestige/internal/clock"
	"github.com/clubworks/prestige/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("action.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, db *gorm.DB, entry domain.Entry) error {
	if entry.TargetType == "" || entry.TargetID == 0 {
		return domain.ErrInvalidTarget
	}

	userID, _ := usercontext.UserIDFromContext(ctx)

	action := domain.Action{
		ID:         s.genID.Generate(),
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Office:     entry.Office,
		UserID:     userID,
		Label:      entry.Label,
		Previous:   snapshot(entry.Previous),
		Note:       entry.Note,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, db, &action); err != nil {
		s.log.Warn("failed to record action",
			zap.String("target_type", string(entry.TargetType)),
			zap.String("label", string(entry.Label)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) ListByTarget(ctx context.Context, targetType domain.TargetType, targetID snowflake.ID) ([]domain.Action, error) {
	return s.repo.ListByTarget(ctx, s.db, targetType, targetID)
}

// snapshot flattens the previous entity into a JSON map. A nil previous
// state (creation) becomes an empty object.
func snapshot(previous any) datatypes.JSONMap {
	if previous == nil {
		return datatypes.JSONMap{}
	}
	raw, err := json.Marshal(previous)
	if err != nil {
		return datatypes.JSONMap{}
	}
	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(flat)
}

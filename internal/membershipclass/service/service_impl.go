package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	"github.com/clubworks/prestige/internal/clock"
	"github.com/clubworks/prestige/internal/config"
	"github.com/clubworks/prestige/internal/hub"
	ledgerdomain "github.com/clubworks/prestige/internal/ledger/domain"
	"github.com/clubworks/prestige/internal/membershipclass/domain"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/clubworks/prestige/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Hub     hub.Provider
	Repo    domain.Repository
	Awards  awarddomain.Repository
	Ledger  ledgerdomain.Repository
	Levels  *config.LevelTableHolder
	Actions actiondomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	hub     hub.Provider
	repo    domain.Repository
	awards  awarddomain.Repository
	ledger  ledgerdomain.Repository
	levels  *config.LevelTableHolder
	actions actiondomain.Service
}

// NewService builds the workflow. The concrete type is returned so the fx
// module can expose it as both the class service and the award workflow's
// review resetter.
func NewService(p Params) *Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("membershipclass.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		hub:     p.Hub,
		repo:    p.Repo,
		awards:  p.Awards,
		ledger:  p.Ledger,
		levels:  p.Levels,
		actions: p.Actions,
	}
}

func (s *Service) Levels() config.LevelTable {
	return s.levels.Get()
}

func (s *Service) HighestLevel(ctx context.Context, userID int64) (int, error) {
	return s.repo.HighestApprovedLevel(ctx, s.db, userID)
}

func (s *Service) Create(ctx context.Context, userID int64, level int) (*domain.MembershipClass, error) {
	callerID, _ := usercontext.UserIDFromContext(ctx)

	if level == 1 {
		return nil, domain.ErrLevelOne
	}
	table := s.levels.Get()
	if _, ok := table[level]; !ok {
		return nil, domain.ErrInvalidLevel
	}

	// Requesting the top level is open to anyone; requesting for another
	// member otherwise needs the request capability.
	var office int64
	if userID != callerID && level != config.TopLevel {
		granted, err := s.hub.HasOverUser(ctx, userID, hub.MCRole(hub.ActionRequest, ""))
		if err != nil {
			return nil, err
		}
		office = granted
	}

	existing, err := s.repo.FindHighestActive(ctx, s.db, userID, level)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Level == level {
			return nil, domain.ErrAlreadyAtLevel
		}
		return nil, domain.ErrAlreadyHigherLevel
	}

	totals, err := s.ledger.Totals(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	class := &domain.MembershipClass{
		ID:       s.genID.Generate(),
		UserID:   userID,
		Date:     s.clock.Now(),
		Level:    level,
		General:  totals.General,
		Regional: totals.Regional,
		National: totals.National,
		Status:   domain.StatusRequested,
		Stage:    domain.StageDomain,
	}
	if !class.MeetsRequirement(table[level]) {
		return nil, domain.ErrInsufficientPrestige
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, class); err != nil {
			return err
		}
		if err := s.awards.LinkReview(ctx, tx, userID, class.ID); err != nil {
			return err
		}
		if office == 0 {
			return nil
		}
		return s.actions.Record(ctx, tx, actiondomain.Entry{
			TargetType: actiondomain.TargetMembershipClass,
			TargetID:   class.ID,
			Office:     office,
			Label:      actiondomain.LabelNominated,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("membership class requested",
		zap.Int64("class_id", int64(class.ID)),
		zap.Int64("user_id", userID),
		zap.Int("level", level),
	)
	return class, nil
}

func (s *Service) Approve(ctx context.Context, id snowflake.ID, rawStage string, note string) (*domain.MembershipClass, error) {
	stage, err := domain.ParseStage(rawStage)
	if err != nil {
		return nil, err
	}

	class, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	switch class.Status {
	case domain.StatusApproved:
		return nil, domain.ErrAlreadyApproved
	case domain.StatusRemoved:
		return nil, domain.ErrClassRemoved
	}
	if class.Stage != stage {
		return nil, domain.ErrStageMismatch
	}

	office, err := s.hub.HasOverUser(ctx, class.UserID, hub.MCRole(hub.ActionApprove, stage.Tier()))
	if err != nil {
		return nil, err
	}

	req, ok := s.levels.Get()[class.Level]
	if !ok {
		return nil, domain.ErrInvalidLevel
	}
	if !class.MeetsRequirement(req) {
		return nil, domain.ErrInsufficientPrestige
	}

	previous := *class
	if stage == domain.StageNational || strings.EqualFold(req.Officer, string(stage)) {
		class.Status = domain.StatusApproved
		class.Office = office
	} else {
		class.Status = domain.StatusReviewing
		class.Stage = stage.Next()
	}

	label := actiondomain.LabelModified
	if class.Status == domain.StatusApproved {
		label = actiondomain.LabelAwarded
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, class); err != nil {
			return err
		}
		return s.actions.Record(ctx, tx, actiondomain.Entry{
			TargetType: actiondomain.TargetMembershipClass,
			TargetID:   class.ID,
			Office:     office,
			Label:      label,
			Previous:   previous,
			Note:       note,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("membership class reviewed",
		zap.Int64("class_id", int64(class.ID)),
		zap.String("stage", string(stage)),
		zap.String("status", string(class.Status)),
	)
	return class, nil
}

func (s *Service) Remove(ctx context.Context, id snowflake.ID, note string) (*domain.MembershipClass, error) {
	class, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if class.Status == domain.StatusRemoved {
		return nil, domain.ErrAlreadyRemoved
	}

	office, err := s.hub.HasOverUser(ctx, class.UserID, hub.MCRole(hub.ActionRevoke, ""))
	if err != nil {
		return nil, err
	}

	previous := *class
	class.Status = domain.StatusRemoved

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, class); err != nil {
			return err
		}
		if err := s.actions.Record(ctx, tx, actiondomain.Entry{
			TargetType: actiondomain.TargetMembershipClass,
			TargetID:   class.ID,
			Office:     office,
			Label:      actiondomain.LabelRemoved,
			Previous:   previous,
			Note:       note,
		}); err != nil {
			return err
		}
		return s.awards.UnlinkReview(ctx, tx, class.ID)
	})
	if err != nil {
		return nil, err
	}

	return class, nil
}

// Reset re-evaluates a review after one of its linked awards changed. It runs
// on the caller's transaction handle so the totals reflect the in-flight
// award mutation. Terminal reviews are left alone.
func (s *Service) Reset(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) error {
	class, err := s.repo.FindByID(ctx, db, reviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if class.Terminal() {
		return nil
	}

	totals, err := s.ledger.Totals(ctx, db, class.UserID)
	if err != nil {
		return err
	}

	class.General = totals.General
	class.Regional = totals.Regional
	class.National = totals.National
	class.Status = domain.StatusRequested
	class.Stage = domain.StageDomain

	req, ok := s.levels.Get()[class.Level]
	if !ok || !class.MeetsRequirement(req) {
		class.Status = domain.StatusRemoved
	}

	if err := s.repo.Update(ctx, db, class); err != nil {
		return err
	}
	s.log.Info("membership class reset",
		zap.Int64("class_id", int64(class.ID)),
		zap.String("status", string(class.Status)),
	)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.MembershipClass, error) {
	class, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	callerID, _ := usercontext.UserIDFromContext(ctx)
	if class.Status != domain.StatusApproved && class.UserID != callerID {
		if _, err := s.hub.HasOverUser(ctx, class.UserID, reviewRoles()...); err != nil {
			return nil, err
		}
	}
	return class, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter) (*domain.ListResponse, error) {
	if filter.Status != "" && filter.Status != string(domain.StatusApproved) {
		if _, err := s.hub.HasOverOrgUnit(ctx, hub.RootOrgUnit, reviewRoles()...); err != nil {
			return nil, err
		}
	}

	filter.Page = filter.Page.Normalize()
	classes, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ListResponse{
		Classes: classes,
		Page:    pagination.BuildPageInfo(filter.Page, total),
	}, nil
}

func reviewRoles() []hub.Role {
	return []hub.Role{
		hub.MCRole(hub.ActionRequest, ""),
		hub.MCRole(hub.ActionApprove, ""),
		hub.MCRole(hub.ActionRevoke, ""),
	}
}

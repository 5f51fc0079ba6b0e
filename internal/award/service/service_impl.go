package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	"github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/clubworks/prestige/internal/clock"
	"github.com/clubworks/prestige/internal/hub"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/clubworks/prestige/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Hub        hub.Provider
	Repo       domain.Repository
	Categories categorydomain.Service
	Actions    actiondomain.Service
	Resetter   domain.ReviewResetter
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	hub        hub.Provider
	repo       domain.Repository
	categories categorydomain.Service
	actions    actiondomain.Service
	resetter   domain.ReviewResetter
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("award.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		hub:        p.Hub,
		repo:       p.Repo,
		categories: p.Categories,
		actions:    p.Actions,
		resetter:   p.Resetter,
	}
}

func (s *Service) Create(ctx context.Context, input domain.Input) (*domain.Award, error) {
	callerID, _ := usercontext.UserIDFromContext(ctx)

	award, action, err := s.validate(ctx, input, callerID)
	if err != nil {
		return nil, err
	}

	var office int64
	if action != hub.ActionRequest {
		office, err = s.hub.HasOverUser(ctx, award.UserID, roleFor(action, *award))
		if err != nil {
			return nil, err
		}
		if action == hub.ActionNominate {
			award.Nominate = office
		} else {
			award.Awarder = office
		}
	}

	award.ID = s.genID.Generate()
	award.Modified = s.clock.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, award); err != nil {
			return err
		}
		if office == 0 {
			return nil
		}
		return s.actions.Record(ctx, tx, actiondomain.Entry{
			TargetType: actiondomain.TargetAward,
			TargetID:   award.ID,
			Office:     office,
			Label:      actiondomain.Label(award.Status),
			Note:       input.Note,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("award created",
		zap.Int64("award_id", int64(award.ID)),
		zap.Int64("user_id", award.UserID),
		zap.String("status", string(award.Status)),
	)
	return award, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, input domain.Input) (*domain.Award, error) {
	callerID, _ := usercontext.UserIDFromContext(ctx)

	var (
		validated *domain.Award
		action    hub.Action
		office    int64
		existing  *domain.Award
	)

	// Validation with its capability check and the record fetch are
	// independent reads; run them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		award, act, err := s.validate(gctx, input, callerID)
		if err != nil {
			return err
		}
		if act != hub.ActionRequest {
			office, err = s.hub.HasOverUser(gctx, award.UserID, roleFor(act, *award))
			if err != nil {
				return err
			}
		}
		validated, action = award, act
		return nil
	})
	g.Go(func() error {
		award, err := s.repo.FindByID(gctx, s.db, id)
		if err != nil {
			return err
		}
		existing = award
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if office == 0 && existing.Status != domain.StatusRequested {
		return nil, domain.ErrModifyOwnApproved
	}

	updated := *existing
	updated.UserID = validated.UserID
	updated.Description = validated.Description
	updated.Source = validated.Source
	updated.CategoryID = validated.CategoryID
	updated.Date = validated.Date
	updated.DocumentID = validated.DocumentID
	updated.Status = validated.Status
	updated.General = validated.General
	updated.Regional = validated.Regional
	updated.National = validated.National
	updated.UsableGeneral = validated.UsableGeneral
	updated.UsableRegional = validated.UsableRegional
	updated.UsableNational = validated.UsableNational
	updated.VIP = validated.VIP
	updated.UsableVIP = validated.UsableVIP
	updated.Modified = s.clock.Now()

	switch action {
	case hub.ActionNominate:
		updated.Nominate = office
	case hub.ActionAward, hub.ActionDeduct:
		updated.Awarder = office
	}

	label := actiondomain.LabelModified
	if updated.Status != existing.Status {
		label = actiondomain.Label(updated.Status)
	}

	usableChanged := updated.UsableGeneral != existing.UsableGeneral ||
		updated.UsableRegional != existing.UsableRegional ||
		updated.UsableNational != existing.UsableNational ||
		updated.UsableVIP != existing.UsableVIP
	cascade := existing.MCReviewID != 0 && usableChanged
	if cascade {
		updated.MCReviewID = 0
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.actions.Record(ctx, tx, actiondomain.Entry{
			TargetType: actiondomain.TargetAward,
			TargetID:   existing.ID,
			Office:     office,
			Label:      label,
			Previous:   existing,
			Note:       input.Note,
		}); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		if cascade {
			return s.resetter.Reset(ctx, tx, existing.MCReviewID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Service) Remove(ctx context.Context, id snowflake.ID, note string) (*domain.Award, error) {
	callerID, _ := usercontext.UserIDFromContext(ctx)

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if existing.Terminal() {
		return nil, domain.ErrAlreadyRemoved
	}

	var office int64
	ownRequest := existing.UserID == callerID && existing.Status == domain.StatusRequested
	if !ownRequest {
		office, err = s.removalOffice(ctx, existing)
		if err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.Status = domain.StatusDenied
	updated.MCReviewID = 0
	updated.Modified = s.clock.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.actions.Record(ctx, tx, actiondomain.Entry{
			TargetType: actiondomain.TargetAward,
			TargetID:   existing.ID,
			Office:     office,
			Label:      actiondomain.LabelRemoved,
			Previous:   existing,
			Note:       note,
		}); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		if existing.MCReviewID != 0 {
			return s.resetter.Reset(ctx, tx, existing.MCReviewID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("award removed",
		zap.Int64("award_id", int64(existing.ID)),
		zap.Int64("office", office),
	)
	return &updated, nil
}

// removalOffice authorizes a removal by someone other than the requesting
// member. The office that granted the award may take it back directly;
// anyone else needs a deduct capability over the member.
func (s *Service) removalOffice(ctx context.Context, award *domain.Award) (int64, error) {
	granting := award.Nominate
	if award.Awarder != 0 {
		granting = award.Awarder
	}

	offices, err := s.hub.Offices(ctx)
	if err != nil {
		return 0, err
	}
	if len(offices) == 0 {
		return 0, hub.ErrDenied
	}
	if granting != 0 {
		for _, office := range offices {
			if office == granting {
				return office, nil
			}
		}
	}
	return s.hub.HasOverUser(ctx, award.UserID, roleFor(hub.ActionDeduct, *award))
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Award, error) {
	award, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	callerID, _ := usercontext.UserIDFromContext(ctx)
	if award.Status != domain.StatusAwarded && award.UserID != callerID {
		if _, err := s.hub.HasOverUser(ctx, award.UserID, viewRoles(award.Economy())...); err != nil {
			return nil, err
		}
	}
	return award, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter) (*domain.ListResponse, error) {
	callerID, _ := usercontext.UserIDFromContext(ctx)

	// Listings beyond publicly Awarded rows need a view capability, except
	// over the caller's own awards.
	open := filter.Status == "" || filter.Status == string(domain.StatusAwarded)
	own := filter.UserID != 0 && filter.UserID == callerID
	if !open && !own {
		roles := viewRoles(filter.Economy)
		var err error
		if filter.UserID != 0 {
			_, err = s.hub.HasOverUser(ctx, filter.UserID, roles...)
		} else {
			_, err = s.hub.HasOverOrgUnit(ctx, hub.RootOrgUnit, roles...)
		}
		if err != nil {
			return nil, err
		}
	}

	filter.Page = filter.Page.Normalize()
	awards, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ListResponse{
		Awards: awards,
		Page:   pagination.BuildPageInfo(filter.Page, total),
	}, nil
}

// validate checks the submitted award and resolves its category, returning
// the award ready to persist and the derived action. A member acting on
// themselves always requests; acting on others defaults to nominating.
func (s *Service) validate(ctx context.Context, input domain.Input, callerID int64) (*domain.Award, hub.Action, error) {
	if input.UserID == 0 {
		return nil, "", domain.ErrUserRequired
	}
	if input.CategoryID == 0 {
		return nil, "", domain.ErrCategoryRequired
	}
	if input.Date.IsZero() {
		return nil, "", domain.ErrDateRequired
	}
	if input.Description == "" {
		return nil, "", domain.ErrDescriptionEmpty
	}

	action := input.Action
	if input.UserID == callerID {
		action = hub.ActionRequest
	} else if action == "" {
		action = hub.ActionNominate
	}
	switch action {
	case hub.ActionRequest, hub.ActionNominate, hub.ActionAward, hub.ActionDeduct:
	default:
		return nil, "", domain.ErrInvalidAction
	}

	points := 0
	for _, value := range []int64{input.General, input.Regional, input.National, input.VIP} {
		if value == 0 {
			continue
		}
		points++
		if action == hub.ActionDeduct && value > 0 {
			return nil, "", domain.ErrInvalidSign
		}
		if action != hub.ActionDeduct && value < 0 {
			return nil, "", domain.ErrInvalidSign
		}
	}
	if points == 0 {
		return nil, "", domain.ErrNoPoints
	}
	if points > 1 {
		return nil, "", domain.ErrMixedPoints
	}

	economy := categorydomain.TypePrestige
	if input.VIP != 0 {
		economy = categorydomain.TypeVIP
	}
	category, err := s.categories.FindValid(ctx, input.CategoryID, input.Date, economy)
	if err != nil {
		if errors.Is(err, categorydomain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCategory
		}
		return nil, "", err
	}

	award := &domain.Award{
		UserID:      input.UserID,
		Description: input.Description,
		Source:      input.Source,
		CategoryID:  category.ID,
		Date:        input.Date,
		DocumentID:  input.DocumentID,
		General:     input.General,
		Regional:    input.Regional,
		National:    input.National,
		VIP:         input.VIP,
	}

	// Only an awarder may set usable figures below the requested points;
	// everything is subject to the category's per-entry cap.
	award.UsableGeneral = usable(input.General, input.UsableGeneral, category.EntryLimit, action)
	award.UsableRegional = usable(input.Regional, input.UsableRegional, category.EntryLimit, action)
	award.UsableNational = usable(input.National, input.UsableNational, category.EntryLimit, action)
	award.UsableVIP = usable(input.VIP, input.UsableVIP, category.EntryLimit, action)

	switch action {
	case hub.ActionRequest:
		award.Status = domain.StatusRequested
	case hub.ActionNominate:
		award.Status = domain.StatusNominated
	default:
		award.Status = domain.StatusAwarded
	}

	return award, action, nil
}

func usable(requested, submitted, entryLimit int64, action hub.Action) int64 {
	if requested == 0 {
		return 0
	}
	current := requested
	if action == hub.ActionAward && submitted != 0 {
		current = submitted
	}
	if current > entryLimit {
		return entryLimit
	}
	return current
}

func roleFor(action hub.Action, award domain.Award) hub.Role {
	if award.Economy() == categorydomain.TypeVIP {
		return hub.VIPRole(action)
	}
	return hub.PrestigeRole(action, award.Tier())
}

func viewRoles(economy categorydomain.Type) []hub.Role {
	switch economy {
	case categorydomain.TypeVIP:
		return []hub.Role{hub.VIPRole(hub.ActionView)}
	case categorydomain.TypePrestige:
		return []hub.Role{hub.PrestigeRole(hub.ActionView, "")}
	}
	return []hub.Role{
		hub.PrestigeRole(hub.ActionView, ""),
		hub.VIPRole(hub.ActionView),
	}
}

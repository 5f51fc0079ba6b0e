package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	actiondomain "github.com/clubworks/prestige/internal/action/domain"
	actionrepo "github.com/clubworks/prestige/internal/action/repository"
	actionservice "github.com/clubworks/prestige/internal/action/service"
	"github.com/clubworks/prestige/internal/award/domain"
	"github.com/clubworks/prestige/internal/award/repository"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	categoryrepo "github.com/clubworks/prestige/internal/category/repository"
	categoryservice "github.com/clubworks/prestige/internal/category/service"
	"github.com/clubworks/prestige/internal/clock"
	"github.com/clubworks/prestige/internal/hub"
	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type hubStub struct {
	mu        sync.Mutex
	office    int64
	err       error
	offices   []int64
	userRoles []hub.Role
	userCalls int
	unitCalls int
}

func (h *hubStub) ResolveToken(ctx context.Context, token string) (int64, error) {
	return 0, hub.ErrUnauthenticated
}

func (h *hubStub) HasOverUser(ctx context.Context, userID int64, roles ...hub.Role) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.userCalls++
	h.userRoles = roles
	if h.err != nil {
		return 0, h.err
	}
	return h.office, nil
}

func (h *hubStub) HasOverOrgUnit(ctx context.Context, orgUnit int64, roles ...hub.Role) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unitCalls++
	if h.err != nil {
		return 0, h.err
	}
	return h.office, nil
}

func (h *hubStub) Offices(ctx context.Context) ([]int64, error) {
	if h.offices == nil {
		return nil, hub.ErrDenied
	}
	return h.offices, nil
}

type resetterStub struct {
	calls []snowflake.ID
}

func (r *resetterStub) Reset(ctx context.Context, db *gorm.DB, reviewID snowflake.ID) error {
	r.calls = append(r.calls, reviewID)
	return nil
}

type awardFixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	hub      *hubStub
	resetter *resetterStub
	prestige categorydomain.Category
	vip      categorydomain.Category
	date     time.Time
}

func setupAwardService(t *testing.T) *awardFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&categorydomain.Category{},
		&domain.Award{},
		&actiondomain.Action{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	start := time.Date(2013, time.June, 1, 0, 0, 0, 0, time.UTC)
	prestige := categorydomain.Category{
		ID: node.Generate(), Name: "Administration",
		TotalLimit: 80, EntryLimit: 30,
		StartDate: start, Type: categorydomain.TypePrestige,
	}
	vip := categorydomain.Category{
		ID: node.Generate(), Name: "VIP Rewards",
		EntryLimit: 100,
		StartDate:  start, Type: categorydomain.TypeVIP,
	}
	require.NoError(t, db.Create(&prestige).Error)
	require.NoError(t, db.Create(&vip).Error)

	log := zap.NewNop()
	fixed := clock.NewFakeClock(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	hubber := &hubStub{office: 7}
	resetter := &resetterStub{}

	categories := categoryservice.NewService(categoryservice.Params{
		DB: db, Log: log, Repo: categoryrepo.Provide(),
	})
	actions := actionservice.NewService(actionservice.Params{
		DB: db, Log: log, GenID: node, Clock: fixed, Repo: actionrepo.Provide(),
	})
	svc := NewService(Params{
		DB: db, Log: log, GenID: node, Clock: fixed,
		Hub: hubber, Repo: repository.Provide(),
		Categories: categories, Actions: actions, Resetter: resetter,
	})

	return &awardFixture{
		svc: svc, db: db, node: node,
		hub: hubber, resetter: resetter,
		prestige: prestige, vip: vip,
		date: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
	}
}

func (f *awardFixture) input(userID int64) domain.Input {
	return domain.Input{
		UserID:      userID,
		Description: "ran the spring tournament",
		CategoryID:  f.prestige.ID,
		Date:        f.date,
	}
}

func (f *awardFixture) actionsFor(t *testing.T, id snowflake.ID) []actiondomain.Action {
	t.Helper()
	var actions []actiondomain.Action
	require.NoError(t, f.db.
		Where("target_type = ? AND target_id = ?", actiondomain.TargetAward, id).
		Order("created_at asc, id asc").
		Find(&actions).Error)
	return actions
}

func callerCtx(userID int64) context.Context {
	return usercontext.WithUserID(context.Background(), userID)
}

func TestCreateSelfAlwaysRequest(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(10)
	input.Action = hub.ActionAward
	input.General = 20

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRequested, award.Status)
	assert.Equal(t, int64(20), award.UsableGeneral)
	assert.Zero(t, award.Awarder)
	assert.Zero(t, f.hub.userCalls, "requests need no capability check")
	assert.Empty(t, f.actionsFor(t, award.ID), "requests leave no office action")
}

func TestCreateDefaultsToNominate(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(20)
	input.General = 20

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNominated, award.Status)
	assert.Equal(t, int64(7), award.Nominate)
	require.Len(t, f.hub.userRoles, 1)
	assert.Equal(t, "prestige_nominate_general", f.hub.userRoles[0].String())

	actions := f.actionsFor(t, award.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, actiondomain.LabelNominated, actions[0].Label)
	assert.Equal(t, int64(7), actions[0].Office)
}

func TestCreateAwardCapsUsableAtEntryLimit(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(20)
	input.Action = hub.ActionAward
	input.General = 80

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAwarded, award.Status)
	assert.Equal(t, int64(80), award.General, "requested figure is kept")
	assert.Equal(t, int64(30), award.UsableGeneral, "usable figure hits the category cap")
	assert.Equal(t, int64(7), award.Awarder)
}

func TestCreateAwarderMayLowerUsable(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(20)
	input.Action = hub.ActionAward
	input.General = 20
	input.UsableGeneral = 10

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)
	assert.Equal(t, int64(10), award.UsableGeneral)
}

func TestCreateNominationIgnoresSubmittedUsable(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(20)
	input.Action = hub.ActionNominate
	input.General = 20
	input.UsableGeneral = 5

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)
	assert.Equal(t, int64(20), award.UsableGeneral)
}

func TestCreateDeductionSkipsCap(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(20)
	input.Action = hub.ActionDeduct
	input.General = -50

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAwarded, award.Status)
	assert.Equal(t, int64(-50), award.UsableGeneral, "deductions pass the cap untouched")
	require.Len(t, f.hub.userRoles, 1)
	assert.Equal(t, "prestige_deduct_general", f.hub.userRoles[0].String())
}

func TestCreateValidation(t *testing.T) {
	f := setupAwardService(t)
	ctx := callerCtx(10)

	cases := []struct {
		name    string
		mutate  func(*domain.Input)
		wantErr error
	}{
		{"no points", func(i *domain.Input) {}, domain.ErrNoPoints},
		{"mixed tiers", func(i *domain.Input) { i.General = 5; i.Regional = 5 }, domain.ErrMixedPoints},
		{"mixed economies", func(i *domain.Input) { i.General = 5; i.VIP = 5 }, domain.ErrMixedPoints},
		{"negative award", func(i *domain.Input) { i.Action = hub.ActionAward; i.General = -5 }, domain.ErrInvalidSign},
		{"positive deduct", func(i *domain.Input) { i.Action = hub.ActionDeduct; i.General = 5 }, domain.ErrInvalidSign},
		{"unknown action", func(i *domain.Input) { i.Action = "bless"; i.General = 5 }, domain.ErrInvalidAction},
		{"missing description", func(i *domain.Input) { i.Description = ""; i.General = 5 }, domain.ErrDescriptionEmpty},
		{"missing user", func(i *domain.Input) { i.UserID = 0; i.General = 5 }, domain.ErrUserRequired},
		{"missing category", func(i *domain.Input) { i.CategoryID = 0; i.General = 5 }, domain.ErrCategoryRequired},
		{"missing date", func(i *domain.Input) { i.Date = time.Time{}; i.General = 5 }, domain.ErrDateRequired},
		{"vip points on prestige category", func(i *domain.Input) { i.VIP = 5 }, domain.ErrInvalidCategory},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := f.input(20)
			tc.mutate(&input)
			_, err := f.svc.Create(ctx, input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateVIPChecksVIPRole(t *testing.T) {
	f := setupAwardService(t)

	input := f.input(20)
	input.CategoryID = f.vip.ID
	input.Action = hub.ActionAward
	input.VIP = 40

	award, err := f.svc.Create(callerCtx(10), input)
	require.NoError(t, err)

	assert.Equal(t, int64(40), award.UsableVIP)
	require.Len(t, f.hub.userRoles, 1)
	assert.Equal(t, "vip_award", f.hub.userRoles[0].String())
}

func TestUpdateOwnRequest(t *testing.T) {
	f := setupAwardService(t)
	ctx := callerCtx(10)

	input := f.input(10)
	input.General = 10
	award, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	input.Description = "ran the spring and summer tournaments"
	updated, err := f.svc.Update(ctx, award.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "ran the spring and summer tournaments", updated.Description)
	assert.Equal(t, domain.StatusRequested, updated.Status)

	actions := f.actionsFor(t, award.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, actiondomain.LabelModified, actions[0].Label)
}

func TestUpdateOwnSettledAwardForbidden(t *testing.T) {
	f := setupAwardService(t)

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 10,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusAwarded,
		General: 10, UsableGeneral: 10,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	input := f.input(10)
	input.General = 10
	_, err := f.svc.Update(callerCtx(10), existing.ID, input)
	assert.ErrorIs(t, err, domain.ErrModifyOwnApproved)
}

func TestUpdateUnlinksReviewWhenUsableChanges(t *testing.T) {
	f := setupAwardService(t)
	reviewID := f.node.Generate()

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusAwarded,
		General: 20, UsableGeneral: 20,
		MCReviewID: reviewID,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	input := f.input(20)
	input.Action = hub.ActionAward
	input.General = 10

	updated, err := f.svc.Update(callerCtx(10), existing.ID, input)
	require.NoError(t, err)

	assert.Zero(t, updated.MCReviewID)
	require.Len(t, f.resetter.calls, 1)
	assert.Equal(t, reviewID, f.resetter.calls[0])
}

func TestUpdateKeepsReviewWhenUsableUnchanged(t *testing.T) {
	f := setupAwardService(t)
	reviewID := f.node.Generate()

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusAwarded,
		General: 20, UsableGeneral: 20,
		MCReviewID: reviewID,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	input := f.input(20)
	input.Action = hub.ActionAward
	input.General = 20
	input.Description = "past service, amended"

	updated, err := f.svc.Update(callerCtx(10), existing.ID, input)
	require.NoError(t, err)

	assert.Equal(t, reviewID, updated.MCReviewID)
	assert.Empty(t, f.resetter.calls)
}

func TestRemoveOwnRequest(t *testing.T) {
	f := setupAwardService(t)
	ctx := callerCtx(10)
	f.hub.err = hub.ErrDenied

	input := f.input(10)
	input.General = 10
	award, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	removed, err := f.svc.Remove(ctx, award.ID, "withdrawn")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDenied, removed.Status)

	actions := f.actionsFor(t, award.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, actiondomain.LabelRemoved, actions[0].Label)
	assert.Zero(t, actions[0].Office)
}

func TestRemoveAlreadyRemoved(t *testing.T) {
	f := setupAwardService(t)

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 10,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusDenied,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	_, err := f.svc.Remove(callerCtx(10), existing.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyRemoved)
}

func TestRemoveByGrantingOffice(t *testing.T) {
	f := setupAwardService(t)
	f.hub.offices = []int64{7}
	f.hub.err = hub.ErrDenied

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20, Awarder: 7,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusAwarded,
		General: 10, UsableGeneral: 10,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	removed, err := f.svc.Remove(callerCtx(10), existing.ID, "granted in error")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDenied, removed.Status)
	assert.Zero(t, f.hub.userCalls, "holding the granting office needs no further check")

	actions := f.actionsFor(t, existing.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, int64(7), actions[0].Office)
}

func TestRemoveFallsBackToDeductCapability(t *testing.T) {
	f := setupAwardService(t)
	f.hub.offices = []int64{9}
	f.hub.office = 9

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20, Awarder: 7,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusAwarded,
		General: 10, UsableGeneral: 10,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	_, err := f.svc.Remove(callerCtx(10), existing.ID, "")
	require.NoError(t, err)

	require.Len(t, f.hub.userRoles, 1)
	assert.Equal(t, "prestige_deduct_general", f.hub.userRoles[0].String())
}

func TestRemoveWithoutAnyOffice(t *testing.T) {
	f := setupAwardService(t)
	f.hub.offices = []int64{}

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusNominated,
		General: 10, UsableGeneral: 10,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	_, err := f.svc.Remove(callerCtx(10), existing.ID, "")
	assert.ErrorIs(t, err, hub.ErrDenied)
}

func TestRemoveResetsLinkedReview(t *testing.T) {
	f := setupAwardService(t)
	f.hub.offices = []int64{7}
	reviewID := f.node.Generate()

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20, Awarder: 7,
		Description: "past service", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusAwarded,
		General: 10, UsableGeneral: 10,
		MCReviewID: reviewID,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	removed, err := f.svc.Remove(callerCtx(10), existing.ID, "")
	require.NoError(t, err)

	assert.Zero(t, removed.MCReviewID)
	require.Len(t, f.resetter.calls, 1)
	assert.Equal(t, reviewID, f.resetter.calls[0])
}

func TestGetByIDHidesPendingAwards(t *testing.T) {
	f := setupAwardService(t)
	f.hub.err = hub.ErrDenied

	existing := domain.Award{
		ID: f.node.Generate(), UserID: 20,
		Description: "pending", CategoryID: f.prestige.ID,
		Date: f.date, Status: domain.StatusNominated,
		General: 10, UsableGeneral: 10,
	}
	require.NoError(t, f.db.Create(&existing).Error)

	_, err := f.svc.GetByID(callerCtx(10), existing.ID)
	assert.ErrorIs(t, err, hub.ErrDenied)

	got, err := f.svc.GetByID(callerCtx(20), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
}

func TestListGatesPendingStatuses(t *testing.T) {
	f := setupAwardService(t)
	f.hub.err = hub.ErrDenied

	// Publicly awarded listings need no capability.
	_, err := f.svc.List(callerCtx(10), domain.Filter{})
	require.NoError(t, err)
	assert.Zero(t, f.hub.unitCalls)

	// The caller's own rows are always visible.
	_, err = f.svc.List(callerCtx(10), domain.Filter{UserID: 10, Status: domain.StatusAll})
	require.NoError(t, err)
	assert.Zero(t, f.hub.userCalls)

	// Everything else needs a view capability.
	_, err = f.svc.List(callerCtx(10), domain.Filter{Status: string(domain.StatusRequested)})
	assert.ErrorIs(t, err, hub.ErrDenied)
	assert.Equal(t, 1, f.hub.unitCalls)

	_, err = f.svc.List(callerCtx(10), domain.Filter{UserID: 20, Status: domain.StatusAll})
	assert.ErrorIs(t, err, hub.ErrDenied)
	assert.Equal(t, 1, f.hub.userCalls)
}

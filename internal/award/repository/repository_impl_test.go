package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/award/domain"
	categorydomain "github.com/clubworks/prestige/internal/category/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAwardRepo(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Award{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, node
}

func seed(t *testing.T, db *gorm.DB, award domain.Award) domain.Award {
	t.Helper()
	if award.Date.IsZero() {
		award.Date = time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	}
	if award.Description == "" {
		award.Description = "service"
	}
	require.NoError(t, db.Create(&award).Error)
	return award
}

func TestListDefaultsToAwarded(t *testing.T) {
	db, node := setupAwardRepo(t)
	repo := Provide()
	ctx := context.Background()

	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded})
	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusRequested})
	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusDenied})

	awards, total, err := repo.List(ctx, db, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, awards, 1)
	assert.Equal(t, domain.StatusAwarded, awards[0].Status)

	_, total, err = repo.List(ctx, db, domain.Filter{Status: domain.StatusAll})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, total, err = repo.List(ctx, db, domain.Filter{Status: string(domain.StatusRequested)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestListEconomyFilter(t *testing.T) {
	db, node := setupAwardRepo(t)
	repo := Provide()
	ctx := context.Background()

	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, General: 10})
	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, VIP: 10})

	awards, _, err := repo.List(ctx, db, domain.Filter{Economy: categorydomain.TypeVIP})
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.NotZero(t, awards[0].VIP)

	awards, _, err = repo.List(ctx, db, domain.Filter{Economy: categorydomain.TypePrestige})
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.Zero(t, awards[0].VIP)
}

func TestListDateWindow(t *testing.T) {
	db, node := setupAwardRepo(t)
	repo := Provide()
	ctx := context.Background()

	jan := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC)
	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, Date: jan})
	seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, Date: feb})

	// dateAfter is inclusive, dateBefore exclusive.
	awards, _, err := repo.List(ctx, db, domain.Filter{DateAfter: &feb})
	require.NoError(t, err)
	assert.Len(t, awards, 1)

	awards, _, err = repo.List(ctx, db, domain.Filter{DateBefore: &feb})
	require.NoError(t, err)
	require.Len(t, awards, 1)
	assert.True(t, awards[0].Date.Equal(jan))
}

func TestListOrdersNewestFirst(t *testing.T) {
	db, node := setupAwardRepo(t)
	repo := Provide()

	older := seed(t, db, domain.Award{
		ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded,
		Date: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	newer := seed(t, db, domain.Award{
		ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded,
		Date: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	})

	awards, _, err := repo.List(context.Background(), db, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, awards, 2)
	assert.Equal(t, newer.ID, awards[0].ID)
	assert.Equal(t, older.ID, awards[1].ID)
}

func TestLinkReviewTargetsUnlinkedAwardedPrestige(t *testing.T) {
	db, node := setupAwardRepo(t)
	repo := Provide()
	ctx := context.Background()
	reviewID := node.Generate()

	linkable := seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, General: 10, UsableGeneral: 10})
	pending := seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusRequested, General: 10, UsableGeneral: 10})
	vip := seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, VIP: 10, UsableVIP: 10})
	taken := seed(t, db, domain.Award{ID: node.Generate(), UserID: 7, Status: domain.StatusAwarded, General: 5, UsableGeneral: 5, MCReviewID: node.Generate()})

	require.NoError(t, repo.LinkReview(ctx, db, 7, reviewID))

	var got domain.Award
	require.NoError(t, db.First(&got, "id = ?", linkable.ID).Error)
	assert.Equal(t, reviewID, got.MCReviewID)

	for _, untouched := range []domain.Award{pending, vip} {
		got = domain.Award{}
		require.NoError(t, db.First(&got, "id = ?", untouched.ID).Error)
		assert.Zero(t, got.MCReviewID)
	}
	got = domain.Award{}
	require.NoError(t, db.First(&got, "id = ?", taken.ID).Error)
	assert.Equal(t, taken.MCReviewID, got.MCReviewID)

	require.NoError(t, repo.UnlinkReview(ctx, db, reviewID))
	got = domain.Award{}
	require.NoError(t, db.First(&got, "id = ?", linkable.ID).Error)
	assert.Zero(t, got.MCReviewID)
}

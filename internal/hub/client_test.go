package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubworks/prestige/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, ServiceToken: "svc-token"}, zap.NewNop())
}

func TestResolveToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/user/me", r.URL.Path)
		assert.Equal(t, "Bearer opaque", r.Header.Get("Authorization"))
		w.Write([]byte(`{"user": 42}`))
	})

	userID, err := client.ResolveToken(context.Background(), "opaque")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestResolveTokenRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ResolveToken(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveTokenUnknownUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user": 0}`))
	})

	_, err := client.ResolveToken(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestHasOverUserSendsCapabilities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/office/verify/user/7", r.URL.Path)
		assert.Equal(t, []string{"vip_award", "prestige_award"}, r.URL.Query()["roles"])
		assert.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"office": 3}`))
	})

	ctx := usercontext.WithToken(context.Background(), "caller-token")
	office, err := client.HasOverUser(ctx, 7, VIPRole(ActionAward))
	require.NoError(t, err)
	assert.Equal(t, int64(3), office)
}

func TestHasOverUserZeroOfficeDenied(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"office": 0}`))
	})

	_, err := client.HasOverUser(context.Background(), 7, PrestigeRole(ActionAward, TierGeneral))
	assert.ErrorIs(t, err, ErrDenied)
}

func TestHasOverOrgUnitFailureDenied(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.HasOverOrgUnit(context.Background(), RootOrgUnit, PrestigeRole(ActionView, ""))
	assert.ErrorIs(t, err, ErrDenied)
}

func TestOfficesFallsBackToServiceToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/office/me", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"offices": [3, 9]}`))
	})

	offices, err := client.Offices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 9}, offices)
}

package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/clubworks/prestige/internal/usercontext"
	"go.uber.org/zap"
)

// Client talks to the hub over HTTP. Every outbound call carries the caller's
// bearer credential; the service token is the fallback for calls made outside
// a request scope.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	log          *zap.Logger
}

type ClientConfig struct {
	BaseURL      string
	ServiceToken string
	Timeout      time.Duration
}

func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: timeout},
		log:          log.Named("hub.client"),
	}
}

type verifyResponse struct {
	Office int64 `json:"office"`
}

type officesResponse struct {
	Offices []int64 `json:"offices"`
}

type meResponse struct {
	User int64 `json:"user"`
}

func (c *Client) ResolveToken(ctx context.Context, token string) (int64, error) {
	var resp meResponse
	if err := c.get(ctx, "/v1/user/me", nil, token, &resp); err != nil {
		return 0, ErrUnauthenticated
	}
	if resp.User == 0 {
		return 0, ErrUnauthenticated
	}
	return resp.User, nil
}

func (c *Client) HasOverUser(ctx context.Context, userID int64, roles ...Role) (int64, error) {
	return c.verify(ctx, "/v1/office/verify/user/"+strconv.FormatInt(userID, 10), roles)
}

func (c *Client) HasOverOrgUnit(ctx context.Context, orgUnit int64, roles ...Role) (int64, error) {
	return c.verify(ctx, "/v1/office/verify/unit/"+strconv.FormatInt(orgUnit, 10), roles)
}

func (c *Client) Offices(ctx context.Context) ([]int64, error) {
	var resp officesResponse
	if err := c.get(ctx, "/v1/office/me", nil, c.callerToken(ctx), &resp); err != nil {
		return nil, ErrDenied
	}
	return resp.Offices, nil
}

func (c *Client) verify(ctx context.Context, path string, roles []Role) (int64, error) {
	query := url.Values{}
	for _, capability := range CapabilityList(roles) {
		query.Add("roles", capability)
	}

	var resp verifyResponse
	if err := c.get(ctx, path, query, c.callerToken(ctx), &resp); err != nil {
		c.log.Debug("capability check failed", zap.String("path", path), zap.Error(err))
		return 0, ErrDenied
	}
	if resp.Office == 0 {
		return 0, ErrDenied
	}
	return resp.Office, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, token string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("hub: unexpected status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (c *Client) callerToken(ctx context.Context) string {
	if token, ok := usercontext.TokenFromContext(ctx); ok {
		return token
	}
	return c.serviceToken
}

package hub

import (
	"github.com/clubworks/prestige/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	return NewClient(ClientConfig{
		BaseURL:      cfg.HubURL,
		ServiceToken: cfg.HubToken,
	}, log)
}

var Module = fx.Module("hub",
	fx.Provide(NewFromConfig),
)

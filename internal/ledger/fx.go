package ledger

import (
	"github.com/clubworks/prestige/internal/ledger/repository"
	"github.com/clubworks/prestige/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

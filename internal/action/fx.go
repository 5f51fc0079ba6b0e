package action

import (
	"github.com/clubworks/prestige/internal/action/repository"
	"github.com/clubworks/prestige/internal/action/service"
	"go.uber.org/fx"
)

var Module = fx.Module("action.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

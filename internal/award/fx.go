package award

import (
	"github.com/clubworks/prestige/internal/award/repository"
	"github.com/clubworks/prestige/internal/award/service"
	"go.uber.org/fx"
)

var Module = fx.Module("award.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

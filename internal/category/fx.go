package category

import (
	"github.com/clubworks/prestige/internal/category/repository"
	"github.com/clubworks/prestige/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)

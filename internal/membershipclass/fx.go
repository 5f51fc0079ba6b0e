package membershipclass

import (
	awarddomain "github.com/clubworks/prestige/internal/award/domain"
	"github.com/clubworks/prestige/internal/membershipclass/domain"
	"github.com/clubworks/prestige/internal/membershipclass/repository"
	"github.com/clubworks/prestige/internal/membershipclass/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membershipclass.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) domain.Service { return s }),
	fx.Provide(func(s *service.Service) awarddomain.ReviewResetter { return s }),
)

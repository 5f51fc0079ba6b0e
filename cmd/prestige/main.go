package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/prestige/internal/action"
	"github.com/clubworks/prestige/internal/award"
	"github.com/clubworks/prestige/internal/category"
	"github.com/clubworks/prestige/internal/clock"
	"github.com/clubworks/prestige/internal/config"
	"github.com/clubworks/prestige/internal/hub"
	"github.com/clubworks/prestige/internal/ledger"
	"github.com/clubworks/prestige/internal/logger"
	"github.com/clubworks/prestige/internal/membershipclass"
	"github.com/clubworks/prestige/internal/migration"
	"github.com/clubworks/prestige/internal/server"
	"github.com/clubworks/prestige/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		hub.Module,
		migration.Module,

		// Functional domains
		category.Module,
		ledger.Module,
		action.Module,
		award.Module,
		membershipclass.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

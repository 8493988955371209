//go:build wireinject
// +build wireinject

package main

import (
	"github.com/discosoft/talep/cmd/bot/config"
	"github.com/discosoft/talep/pkg/logging"
	"github.com/google/wire"
	"github.com/gorilla/mux"
)

func InitializeApp() (*App, error) {
	wire.Build(
		wire.Value(logging.Name(config.AppName)),
		logging.NewConfig,
		logging.CommonLogger,
		mux.NewRouter,
		NewApp,
	)
	return new(App), nil
}

package main

import (
	"github.com/Haymooed/BallsDex-Event-Package/internal/config"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
)

// initLogger initializes the logger using centralized app configuration
func initLogger(cfg *config.Config) {
	// Source info only helps during development
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	loggerConfig := logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		"ballsdex-crafting",
		"",
		cfg.Environment,
		addSource,
	)

	logger.Init(loggerConfig)
}

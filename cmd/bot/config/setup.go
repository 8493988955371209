package config

import (
	"log/slog"
	"os"

	"github.com/discosoft/talep/pkg/dataaccess"
	"github.com/discosoft/talep/pkg/dataaccess/connection"
	"github.com/discosoft/talep/pkg/logging"
)

func Parse(l *slog.Logger) {
	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		ApplicationId = envAppId
	}

	if envMongoUri := os.Getenv(EnvMongoUri); envMongoUri != "" {
		l.Debug("Found MongoDB URI in environment", slog.String("key", EnvMongoUri))
		MongoUri = envMongoUri
	}

	if envConfigFile := os.Getenv(EnvConfigFile); envConfigFile != "" {
		l.Debug("Found configuration file path in environment", slog.String("key", EnvConfigFile))
		ConfigFile = envConfigFile
	} else {
		ConfigFile = DefaultConfigFile

		l.Info("No configuration file path provided in environment, defaulting",
			slog.String("key", EnvConfigFile),
			slog.String("file", DefaultConfigFile),
		)
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		MonitoringPort = envMonitoringPort
	} else {
		// Default to 8080 if not provided.
		MonitoringPort = "8080"

		l.Info("No monitoring port provided in environment, defaulting to 8080", slog.String("key", EnvMonitoringPort))
	}

	if BotToken == "" || ApplicationId == "" {
		l.Error("Bot token and application ID are required",
			slog.String("keys", EnvBotToken+", "+EnvApplicationId))
		os.Exit(1)
	}

	if MongoUri != "" {
		connectMongo(l)
		return
	}

	l.Info("No MongoDB URI provided, configuration will be stored in a local file",
		slog.String("file", ConfigFile))
}

func connectMongo(l *slog.Logger) {
	mongoConn := new(connection.MongoDB)
	mongoConn.ConnectionString = MongoUri

	db, err := mongoConn.Connect()
	if err != nil {
		l.Error("Error connecting to mongo", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	} else if db == nil {
		l.Error("MongoDB came back nil", slog.String(logging.KeyError, "MongoDB came back nil"))
		os.Exit(1)
	}

	dataaccess.MongoDB = db

	l.Debug("Connected to MongoDB", slog.String("key", EnvMongoUri))
}

package config

const (
	// AppName is the name of the application.
	AppName = "talep"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI. When it
	// is unset the bot persists its configuration to a local JSON file.
	EnvMongoUri = `MONGO_URI`

	// EnvConfigFile is the environment variable for the configuration file
	// path used when MongoDB is not configured.
	EnvConfigFile = `CONFIG_FILE`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// DefaultConfigFile is used when EnvConfigFile is not set.
	DefaultConfigFile = `config.json`
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// ConfigFile is the path of the file-backed configuration document.
	ConfigFile string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string
)

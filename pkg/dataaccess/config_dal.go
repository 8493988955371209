package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/discosoft/talep/pkg/dataaccess/monitoring"
	"github.com/discosoft/talep/pkg/entities"
	"github.com/discosoft/talep/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const configDalName = "config_dal"

// configDocID keys the single configuration document in the collection. The
// bot serves one guild, so the document is a singleton.
const configDocID = "guild_config"

type mongoConfigDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewMongoConfigDal creates a configuration data access layer backed by
// MongoDB.
func NewMongoConfigDal() ConfigDal {
	l := slog.Default().With(slog.String(logging.KeyDal, configDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &mongoConfigDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *mongoConfigDal) Load(ctx context.Context) (*entities.GuildConfig, error) {
	collection := d.client.Database(mongoDatabase).Collection("config")

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(configDalName, "load_config", mongoDatabase, "config").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(configDalName, "load_config", mongoDatabase, "config"))
	defer t.ObserveDuration()

	cfg := new(entities.GuildConfig)
	err := collection.FindOne(ctx, bson.M{"_id": configDocID}).Decode(cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		d.l.Info("No configuration document found, creating default")

		cfg = entities.NewGuildConfig()
		if err := d.Save(ctx, cfg); err != nil {
			return nil, fmt.Errorf("error saving default configuration: %w", err)
		}
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting configuration: %w", err)
	}

	cfg.Migrate()
	return cfg, nil
}

func (d *mongoConfigDal) Save(ctx context.Context, cfg *entities.GuildConfig) error {
	collection := d.client.Database(mongoDatabase).Collection("config")

	// Start the prometheus metrics.
	monitoring.MongoTotalRequests.WithLabelValues(configDalName, "save_config", mongoDatabase, "config").Inc()
	t := prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(configDalName, "save_config", mongoDatabase, "config"))
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": configDocID}, bson.M{"$set": cfg}, opts); err != nil {
		return fmt.Errorf("error updating configuration: %w", err)
	}
	return nil
}

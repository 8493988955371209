package dataaccess

import (
	"context"

	"github.com/discosoft/talep/pkg/entities"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB is the Mongo client. This is a connection pool. It is nil when the
// bot runs against the file-backed configuration store.
var MongoDB *mongo.Client

const mongoDatabase = "talep"

// ConfigDal is the data access layer for the guild configuration document.
type ConfigDal interface {
	// Load reads the configuration document, creating and persisting the
	// default document if none exists yet. Loaded documents are migrated to
	// the current schema before they are returned.
	Load(ctx context.Context) (*entities.GuildConfig, error)

	// Save writes the entire configuration document. A save is atomic: a
	// concurrent Load sees either the previous document or the new one,
	// never a partial write.
	Save(ctx context.Context, cfg *entities.GuildConfig) error
}

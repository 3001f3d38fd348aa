package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultMongoDatabase = "documents_api"

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// Connector owns the single MongoDB client shared by every repository.
type Connector struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials MongoDB and pings the primary. When cfg.Database is empty
// the database named in the URI path is used.
func Connect(ctx context.Context, cfg MongoConfig) (*Connector, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is empty")
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = 3 * time.Second
	}

	name := cfg.Database
	if name == "" {
		cs, err := connstring.ParseAndValidate(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("parse mongo uri: %w", err)
		}
		name = cs.Database
	}
	if name == "" {
		name = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Connector{client: client, database: client.Database(name)}, nil
}

func (c *Connector) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

func (c *Connector) DatabaseName() string {
	return c.database.Name()
}

func (c *Connector) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Connector) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}
	return nil
}

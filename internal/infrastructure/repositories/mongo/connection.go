package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds the document store settings
type ConnectionConfig struct {
	URI            string        `yaml:"uri" env:"MONGO_URI"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE"`
	ConnectTimeout time.Duration `yaml:"connect-timeout" env:"MONGO_CONNECT_TIMEOUT"`
}

// DefaultConnectionConfig returns local defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "dataaccess",
		ConnectTimeout: 10 * time.Second,
	}
}

// Connect opens a client and pings the primary
func Connect(ctx context.Context, cfg ConnectionConfig) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(cfg.ConnectTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to document store")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "failed to ping document store")
	}
	klog.V(2).Infof("mongo: connected, database %s", cfg.Database)
	return client, nil
}

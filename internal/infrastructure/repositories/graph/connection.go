package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds the graph store settings
type ConnectionConfig struct {
	URI      string `yaml:"uri" env:"NEO4J_URI"`
	Username string `yaml:"username" env:"NEO4J_USERNAME"`
	Password string `yaml:"password" env:"NEO4J_PASSWORD"`
	Database string `yaml:"database" env:"NEO4J_DATABASE"`
}

// DefaultConnectionConfig returns local defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		URI:      "neo4j://localhost:7687",
		Username: "neo4j",
	}
}

// Connect creates a driver and verifies connectivity
func Connect(ctx context.Context, cfg ConnectionConfig) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graph driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrap(err, "failed to reach graph store")
	}
	klog.V(2).Infof("graph: connected to %s", cfg.URI)
	return driver, nil
}

package pg

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds PostgreSQL connection configuration
type ConnectionConfig struct {
	URI             string        `yaml:"uri" env:"PG_URI"`
	MaxConns        int32         `yaml:"max-conns" env:"PG_MAX_CONNS"`
	MinConns        int32         `yaml:"min-conns" env:"PG_MIN_CONNS"`
	MaxConnLifetime time.Duration `yaml:"max-conn-lifetime" env:"PG_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `yaml:"max-conn-idle-time" env:"PG_MAX_CONN_IDLE_TIME"`
	HealthPeriod    time.Duration `yaml:"health-period" env:"PG_HEALTH_PERIOD"`
}

// DefaultConnectionConfig returns production-ready defaults
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxConns:        30,
		MinConns:        3,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		HealthPeriod:    30 * time.Second,
	}
}

// ConnectionManager owns the pgx pool; pgxpool checks idle connections every HealthPeriod
type ConnectionManager struct {
	config ConnectionConfig
	pool   atomic.Pointer[pgxpool.Pool]
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		config: config,
	}
}

// Connect creates the pool and checks it with a ping
func (cm *ConnectionManager) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(cm.config.URI)
	if err != nil {
		return errors.Wrap(err, "failed to parse connection URI")
	}

	poolConfig.MaxConns = cm.config.MaxConns
	poolConfig.MinConns = cm.config.MinConns
	poolConfig.MaxConnLifetime = cm.config.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cm.config.MaxConnIdleTime
	if cm.config.HealthPeriod > 0 {
		poolConfig.HealthCheckPeriod = cm.config.HealthPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return errors.Wrap(err, "failed to create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return errors.Wrap(err, "failed to ping database")
	}

	cm.pool.Store(pool)
	klog.V(2).Infof("pg: connected to %s", poolConfig.ConnConfig.Host)
	return nil
}

// Close closes the connection pool
func (cm *ConnectionManager) Close() error {
	if pool := cm.pool.Swap(nil); pool != nil {
		pool.Close()
	}
	return nil
}

// Pool returns the current connection pool
func (cm *ConnectionManager) Pool() *pgxpool.Pool {
	return cm.pool.Load()
}

package orm

import (
	"context"
	"time"

	"github.com/jinzhu/gorm"
	// registers the postgres dialect backed by lib/pq
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConnectionConfig holds the gorm connection settings
type ConnectionConfig struct {
	Dialect         string        `yaml:"dialect" env:"ORM_DIALECT"`
	DSN             string        `yaml:"dsn" env:"ORM_DSN"`
	MaxOpenConns    int           `yaml:"max-open-conns" env:"ORM_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max-idle-conns" env:"ORM_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn-max-lifetime" env:"ORM_CONN_MAX_LIFETIME"`
	LogMode         bool          `yaml:"log-mode" env:"ORM_LOG_MODE"`
}

// DefaultConnectionConfig returns defaults for a postgres session store
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Dialect:         "postgres",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// Open opens the gorm session factory and checks it with a ping
func Open(ctx context.Context, cfg ConnectionConfig) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s session store", cfg.Dialect)
	}

	sqlDB := db.DB()
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping session store")
	}

	db.LogMode(cfg.LogMode)
	db.SetLogger(klogWriter{})
	klog.V(2).Infof("orm: %s session store ready", cfg.Dialect)
	return db, nil
}

// klogWriter routes gorm statement logs to klog
type klogWriter struct{}

func (klogWriter) Print(v ...interface{}) {
	klog.V(4).Info(v...)
}

package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jinzhu/gorm"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/infrastructure/repositories/graph"
	"dataaccess-backend/internal/infrastructure/repositories/mem"
	mongorepo "dataaccess-backend/internal/infrastructure/repositories/mongo"
	"dataaccess-backend/internal/infrastructure/repositories/orm"
	"dataaccess-backend/internal/infrastructure/repositories/pg"
)

// RepositoryType represents the type of repository backend
type RepositoryType string

const (
	RepositoryTypeMemory     RepositoryType = "memory"
	RepositoryTypePostgreSQL RepositoryType = "postgresql"
	RepositoryTypeGorm       RepositoryType = "gorm"
	RepositoryTypeMongoDB    RepositoryType = "mongodb"
	RepositoryTypeNeo4j      RepositoryType = "neo4j"
)

// ErrNotOpen is returned when an adapter is requested before Open
var ErrNotOpen = errors.New("repository factory is not open")

// Config holds configuration for repository factory
type Config struct {
	Type           RepositoryType `yaml:"type" env:"REPOSITORY_TYPE"`
	ConnectRetries uint64         `yaml:"connect-retries" env:"REPOSITORY_CONNECT_RETRIES"`
	ConnectTimeout time.Duration  `yaml:"connect-timeout" env:"REPOSITORY_CONNECT_TIMEOUT"`

	PostgreSQL pg.ConnectionConfig        `yaml:"postgresql"`
	Gorm       orm.ConnectionConfig       `yaml:"gorm"`
	MongoDB    mongorepo.ConnectionConfig `yaml:"mongodb"`
	Neo4j      graph.ConnectionConfig     `yaml:"neo4j"`
}

// DefaultConfig returns default configuration for the repository factory
func DefaultConfig() Config {
	return Config{
		Type:           RepositoryTypeMemory,
		ConnectRetries: 5,
		ConnectTimeout: time.Minute,
		PostgreSQL:     pg.DefaultConnectionConfig(),
		Gorm:           orm.DefaultConnectionConfig(),
		MongoDB:        mongorepo.DefaultConnectionConfig(),
		Neo4j:          graph.DefaultConnectionConfig(),
	}
}

// NewMemoryConfig creates a configuration for memory backend
func NewMemoryConfig() Config {
	cfg := DefaultConfig()
	cfg.Type = RepositoryTypeMemory
	return cfg
}

// Validate checks the backend type and its required settings
func (c Config) Validate() error {
	switch c.Type {
	case RepositoryTypeMemory:
		return nil
	case RepositoryTypePostgreSQL:
		if c.PostgreSQL.URI == "" {
			return errors.New("postgresql uri is required")
		}
	case RepositoryTypeGorm:
		if c.Gorm.DSN == "" {
			return errors.New("gorm dsn is required")
		}
	case RepositoryTypeMongoDB:
		if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
			return errors.New("mongodb uri and database are required")
		}
	case RepositoryTypeNeo4j:
		if c.Neo4j.URI == "" {
			return errors.New("neo4j uri is required")
		}
	default:
		return fmt.Errorf("unsupported repository type: %s", c.Type)
	}
	return nil
}

// Binding tells the factory how one entity type is stored by every backend
type Binding[T models.Entity] struct {
	Table     TableID
	Label     string
	NewEntity func() T
	Scan      pgx.RowToFunc[T]
	FromProps func(map[string]any) (T, error)
	// Seed rows are stored when the memory table is first created
	Seed func() []T
}

// TodoBinding binds todos to table tbl_todo and node label Todo
func TodoBinding() Binding[*models.Todo] {
	return Binding[*models.Todo]{
		Table:     TblTodos,
		Label:     models.TodoResource,
		NewEntity: func() *models.Todo { return &models.Todo{} },
		Scan:      pgx.RowToAddrOfStructByName[models.Todo],
		FromProps: models.TodoFromProperties,
		Seed:      models.DefaultTodos,
	}
}

// Factory opens the configured backend and creates adapters over it
type Factory struct {
	config     Config
	newBackOff func() backoff.BackOff

	mu        sync.Mutex
	opened    bool
	pgConn    *pg.ConnectionManager
	ormDB     *gorm.DB
	mongoConn *mongo.Client
	graphConn neo4j.DriverWithContext
	memTables map[TableID]any
}

// NewFactory creates a new repository factory
func NewFactory(config Config) *Factory {
	f := &Factory{
		config:    config,
		memTables: make(map[TableID]any),
	}
	f.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = f.config.ConnectTimeout
		return backoff.WithMaxRetries(b, f.config.ConnectRetries)
	}
	return f
}

// Type returns the configured backend
func (f *Factory) Type() RepositoryType {
	return f.config.Type
}

// Open connects to the configured backend, retrying with exponential backoff
func (f *Factory) Open(ctx context.Context) error {
	if err := f.config.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opened {
		return nil
	}

	var err error
	switch f.config.Type {
	case RepositoryTypeMemory:
	case RepositoryTypePostgreSQL:
		cm := pg.NewConnectionManager(f.config.PostgreSQL)
		if err = f.retry(ctx, "postgresql", cm.Connect); err == nil {
			f.pgConn = cm
		}
	case RepositoryTypeGorm:
		err = f.retry(ctx, "gorm", func(ctx context.Context) (e error) {
			f.ormDB, e = orm.Open(ctx, f.config.Gorm)
			return e
		})
	case RepositoryTypeMongoDB:
		err = f.retry(ctx, "mongodb", func(ctx context.Context) (e error) {
			f.mongoConn, e = mongorepo.Connect(ctx, f.config.MongoDB)
			return e
		})
	case RepositoryTypeNeo4j:
		err = f.retry(ctx, "neo4j", func(ctx context.Context) (e error) {
			f.graphConn, e = graph.Connect(ctx, f.config.Neo4j)
			return e
		})
	}
	if err != nil {
		return errors.Wrapf(err, "failed to open %s repository", f.config.Type)
	}

	f.opened = true
	klog.Infof("repository: %s backend is open", f.config.Type)
	return nil
}

func (f *Factory) retry(ctx context.Context, name string, connect func(context.Context) error) error {
	b := backoff.WithContext(f.newBackOff(), ctx)
	return backoff.RetryNotify(func() error {
		return connect(ctx)
	}, b, func(err error, next time.Duration) {
		klog.Warningf("%s: connect failed, retry in %s: %v", name, next, err)
	})
}

// Close releases the backend connections
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.opened {
		return nil
	}
	f.opened = false

	ctx := context.Background()
	var err error
	switch {
	case f.pgConn != nil:
		err = f.pgConn.Close()
		f.pgConn = nil
	case f.ormDB != nil:
		err = f.ormDB.Close()
		f.ormDB = nil
	case f.mongoConn != nil:
		err = f.mongoConn.Disconnect(ctx)
		f.mongoConn = nil
	case f.graphConn != nil:
		err = f.graphConn.Close(ctx)
		f.graphConn = nil
	}
	return errors.Wrapf(err, "failed to close %s repository", f.config.Type)
}

// NewAdapter creates the adapter of the configured backend for the bound entity type.
// Memory adapters of the same table share one store.
func NewAdapter[T models.Entity](f *Factory, b Binding[T]) (ports.Adapter[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.opened {
		return nil, ErrNotOpen
	}

	switch f.config.Type {
	case RepositoryTypeMemory:
		return mem.NewRegistryWithDB(memTable(f, b)), nil
	case RepositoryTypePostgreSQL:
		return pg.NewRegistry(f.pgConn.Pool(), pg.Table[T]{Name: b.Table.Qualified(), Scan: b.Scan}), nil
	case RepositoryTypeGorm:
		return orm.NewRegistry(f.ormDB, b.Table.Qualified(), b.NewEntity), nil
	case RepositoryTypeMongoDB:
		return mongorepo.NewRegistry(f.mongoConn.Database(f.config.MongoDB.Database), b.Table.String(), b.NewEntity), nil
	case RepositoryTypeNeo4j:
		return graph.NewRegistry(f.graphConn, f.config.Neo4j.Database, b.Label, b.FromProps), nil
	default:
		return nil, fmt.Errorf("unsupported repository type: %s", f.config.Type)
	}
}

func memTable[T models.Entity](f *Factory, b Binding[T]) *mem.MemDB[T] {
	if db, ok := f.memTables[b.Table].(*mem.MemDB[T]); ok {
		return db
	}
	db := mem.NewMemDB[T]()
	if b.Seed != nil {
		for _, row := range b.Seed() {
			db.Put(row)
		}
	}
	f.memTables[b.Table] = db
	klog.V(2).Infof("repository: memory table %s created with %d rows", b.Table, db.Len())
	return db
}

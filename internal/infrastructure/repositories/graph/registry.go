// Package graph is the graph store backend: entities are nodes of one label,
// queried with Cypher over driver sessions.
package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

const (
	propsKey  = "props"
	totalKey  = "total"
	argLimit  = "row_limit"
	argOffset = "row_offset"
	argID     = "id"
	argProps  = "entity"
	argLabel  = "label"
)

// result is the minimal interface needed from a neo4j result
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// runner is the minimal interface needed from a neo4j session
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

// sessionAdapter adapts neo4j.SessionWithContext to runner
type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

// Registry is the graph store adapter for one node label
type Registry[T models.Entity] struct {
	driver     neo4j.DriverWithContext
	database   string
	label      string
	fromProps  func(map[string]any) (T, error)
	newSession func(ctx context.Context) runner
	translator Translator
}

// NewRegistry creates a registry for nodes labelled label
func NewRegistry[T models.Entity](
	driver neo4j.DriverWithContext,
	database, label string,
	fromProps func(map[string]any) (T, error),
) *Registry[T] {
	return &Registry[T]{
		driver:    driver,
		database:  database,
		label:     label,
		fromProps: fromProps,
	}
}

// Translator returns the Cypher dialect
func (r *Registry[T]) Translator() search.FilterTranslator {
	return r.translator
}

// Close is a no-op; the driver is owned by the factory
func (r *Registry[T]) Close() error {
	return nil
}

func (r *Registry[T]) session(ctx context.Context) runner {
	if r.newSession != nil {
		return r.newSession(ctx)
	}
	return &sessionAdapter{sess: r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})}
}

// run executes cypher and calls each for every record
func (r *Registry[T]) run(ctx context.Context, cypher string, params map[string]any, each func(*neo4j.Record) error) error {
	klog.V(5).Infof("graph: %s %v", cypher, params)

	sess := r.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return errors.Wrapf(err, "failed to run query on %s", r.label)
	}
	for res.Next(ctx) {
		if err := each(res.Record()); err != nil {
			return err
		}
	}
	return errors.Wrapf(res.Err(), "failed to read %s", r.label)
}

func (r *Registry[T]) decode(rec *neo4j.Record) (T, error) {
	var zero T
	raw, ok := rec.Get(propsKey)
	if !ok {
		return zero, errors.Errorf("record of %s has no %s", r.label, propsKey)
	}
	props, ok := raw.(map[string]any)
	if !ok {
		return zero, errors.Errorf("record of %s has %T props", r.label, raw)
	}
	return r.fromProps(props)
}

func (r *Registry[T]) match(q ports.Query) string {
	var sb strings.Builder
	sb.WriteString("MATCH (" + NodeVar + ":" + r.label + ")")
	if v := strings.TrimSpace(q.QueryVariables()); v != "" {
		sb.WriteString(" MATCH " + v)
	}
	if q.Filter != "" {
		sb.WriteString(" WHERE " + q.Filter)
	}
	return sb.String()
}

func (r *Registry[T]) findCypher(q ports.Query) (string, map[string]any) {
	params := q.Params.Map()
	cypher := r.match(q) + " RETURN properties(" + NodeVar + ") AS " + propsKey
	if order := r.translator.OrderBy(q.Sort); order != "" {
		cypher += " ORDER BY " + order
	}
	if q.Window.Applied {
		cypher += " SKIP $" + argOffset + " LIMIT $" + argLimit
		params[argOffset] = q.Window.Lower
		params[argLimit] = q.Window.Width()
	}
	return cypher, params
}

// Find streams matching nodes
func (r *Registry[T]) Find(ctx context.Context, q ports.Query, consume func(T) error) error {
	cypher, params := r.findCypher(q)
	return r.run(ctx, cypher, params, func(rec *neo4j.Record) error {
		item, err := r.decode(rec)
		if err != nil {
			return err
		}
		return consume(item)
	})
}

// Count counts matching nodes
func (r *Registry[T]) Count(ctx context.Context, q ports.Query) (int64, error) {
	cypher := r.match(q) + " RETURN count(" + NodeVar + ") AS " + totalKey
	var total int64
	err := r.run(ctx, cypher, q.Params.Map(), func(rec *neo4j.Record) error {
		v, _ := rec.Get(totalKey)
		total = models.AsInt64(v)
		return nil
	})
	return total, err
}

// FindByID loads the node with id
func (r *Registry[T]) FindByID(ctx context.Context, id int64) (T, error) {
	cypher := "MATCH (" + NodeVar + ":" + r.label + " {id: $" + argID + "}) RETURN properties(" + NodeVar + ") AS " + propsKey
	return r.single(ctx, cypher, map[string]any{argID: id})
}

// Insert creates a node with the next id of the label sequence
func (r *Registry[T]) Insert(ctx context.Context, entity T) (T, error) {
	cypher := "MERGE (s:Sequence {name: $" + argLabel + "}) ON CREATE SET s.value = 0" +
		" SET s.value = s.value + 1 WITH s.value AS next" +
		" CREATE (" + NodeVar + ":" + r.label + ") SET " + NodeVar + " = $" + argProps + ", " + NodeVar + ".id = next" +
		" RETURN properties(" + NodeVar + ") AS " + propsKey
	return r.single(ctx, cypher, map[string]any{argLabel: r.label, argProps: properties(entity)})
}

// Update overwrites the properties of an existing node
func (r *Registry[T]) Update(ctx context.Context, entity T) (T, error) {
	cypher := "MATCH (" + NodeVar + ":" + r.label + " {id: $" + argID + "}) SET " + NodeVar + " += $" + argProps +
		" RETURN properties(" + NodeVar + ") AS " + propsKey
	return r.single(ctx, cypher, map[string]any{argID: entity.GetID(), argProps: properties(entity)})
}

// Delete removes the node and its relationships
func (r *Registry[T]) Delete(ctx context.Context, entity T) error {
	cypher := "MATCH (" + NodeVar + ":" + r.label + " {id: $" + argID + "}) DETACH DELETE " + NodeVar +
		" RETURN count(*) AS " + totalKey
	var deleted int64
	err := r.run(ctx, cypher, map[string]any{argID: entity.GetID()}, func(rec *neo4j.Record) error {
		v, _ := rec.Get(totalKey)
		deleted = models.AsInt64(v)
		return nil
	})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return errors.Wrapf(ports.ErrNotFound, "delete %s id %d", r.label, entity.GetID())
	}
	return nil
}

func (r *Registry[T]) single(ctx context.Context, cypher string, params map[string]any) (T, error) {
	var (
		zero  T
		item  T
		found bool
	)
	err := r.run(ctx, cypher, params, func(rec *neo4j.Record) error {
		v, err := r.decode(rec)
		if err != nil {
			return err
		}
		item, found = v, true
		return nil
	})
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ports.ErrNotFound
	}
	return item, nil
}

// properties drops the id, which the store assigns
func properties(e models.Entity) map[string]any {
	props := e.Properties()
	delete(props, argID)
	return props
}

var _ ports.Adapter[*models.Todo] = (*Registry[*models.Todo])(nil)

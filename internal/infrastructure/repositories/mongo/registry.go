// Package mongo is the document store backend
package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
	"dataaccess-backend/internal/domain/search"
)

// CountersCollection keeps one id sequence per collection
const CountersCollection = "counters"

// Registry is the document store adapter for one collection
type Registry[T models.Entity] struct {
	coll       *mongo.Collection
	counters   *mongo.Collection
	newEntity  func() T
	translator Translator
}

// NewRegistry creates a registry over the named collection of db
func NewRegistry[T models.Entity](db *mongo.Database, collection string, newEntity func() T) *Registry[T] {
	return &Registry[T]{
		coll:      db.Collection(collection),
		counters:  db.Collection(CountersCollection),
		newEntity: newEntity,
	}
}

// Translator returns the BSON dialect
func (r *Registry[T]) Translator() search.FilterTranslator {
	return r.translator
}

// Close is a no-op; the client is owned by the factory
func (r *Registry[T]) Close() error {
	return nil
}

func (r *Registry[T]) filter(q ports.Query) (bson.D, error) {
	if v := q.QueryVariables(); v != "" {
		klog.V(3).Infof("mongo: query variables %q are not supported and are ignored", v)
	}
	return r.translator.Filter(q.Terms())
}

// Find streams matching documents
func (r *Registry[T]) Find(ctx context.Context, q ports.Query, consume func(T) error) error {
	filter, err := r.filter(q)
	if err != nil {
		return err
	}

	opts := options.Find()
	if sort := r.translator.Sort(q.Sort); sort != nil {
		opts.SetSort(sort)
	}
	if q.Window.Applied {
		opts.SetSkip(q.Window.Lower).SetLimit(q.Window.Width())
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return errors.Wrapf(err, "failed to query %s", r.coll.Name())
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		item := r.newEntity()
		if err := cursor.Decode(item); err != nil {
			return errors.Wrapf(err, "failed to decode %s", r.coll.Name())
		}
		if err := consume(item); err != nil {
			return err
		}
	}
	return errors.Wrapf(cursor.Err(), "failed to read %s", r.coll.Name())
}

// Count counts documents matching the filter
func (r *Registry[T]) Count(ctx context.Context, q ports.Query) (int64, error) {
	filter, err := r.filter(q)
	if err != nil {
		return 0, err
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count %s", r.coll.Name())
	}
	return n, nil
}

// FindByID loads the document with id
func (r *Registry[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T
	item := r.newEntity()
	err := r.coll.FindOne(ctx, bson.D{{Key: IDField, Value: id}}).Decode(item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return zero, ports.ErrNotFound
	}
	if err != nil {
		return zero, errors.Wrapf(err, "failed to load %s", r.coll.Name())
	}
	return item, nil
}

// Insert stores the document under the next id of the collection sequence
func (r *Registry[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	id, err := r.nextID(ctx)
	if err != nil {
		return zero, err
	}
	entity.SetID(id)
	if _, err := r.coll.InsertOne(ctx, entity); err != nil {
		return zero, errors.Wrapf(err, "failed to insert into %s", r.coll.Name())
	}
	return entity, nil
}

// Update replaces the stored document
func (r *Registry[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: IDField, Value: entity.GetID()}}, entity)
	if err != nil {
		return zero, errors.Wrapf(err, "failed to update %s", r.coll.Name())
	}
	if res.MatchedCount == 0 {
		return zero, errors.Wrapf(ports.ErrNotFound, "update %s id %d", r.coll.Name(), entity.GetID())
	}
	return entity, nil
}

// Delete removes the document of the entity
func (r *Registry[T]) Delete(ctx context.Context, entity T) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: IDField, Value: entity.GetID()}})
	if err != nil {
		return errors.Wrapf(err, "failed to delete from %s", r.coll.Name())
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(ports.ErrNotFound, "delete %s id %d", r.coll.Name(), entity.GetID())
	}
	return nil
}

func (r *Registry[T]) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: IDField, Value: r.coll.Name()}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to allocate id for %s", r.coll.Name())
	}
	return counter.Seq, nil
}

var _ ports.Adapter[*models.Todo] = (*Registry[*models.Todo])(nil)

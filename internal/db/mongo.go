package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/config"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoStore keeps each collection as flat documents keyed by a UUID string _id
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
	logger   zerolog.Logger

	mu     sync.RWMutex
	unique map[string][]string
}

// NewMongoStore connects to MongoDB and verifies the primary is reachable
func NewMongoStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Database.MongoURI).
		SetMaxPoolSize(uint64(cfg.Database.MaxOpenConns)).
		SetMinPoolSize(uint64(cfg.Database.MaxIdleConns)).
		SetServerSelectionTimeout(cfg.ConnectTimeout())

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, unavailable("connect", "mongo", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, unavailable("connect", "mongo", err)
	}

	return &MongoStore{
		client:   client,
		database: client.Database(cfg.Database.MongoDatabase),
		logger:   logger,
		unique:   make(map[string][]string),
	}, nil
}

// Driver implements Store
func (s *MongoStore) Driver() string { return config.DriverMongo }

// Ping implements Store
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable("ping", "mongo", err)
	}
	return nil
}

// Close implements Store
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}
	return nil
}

// EnsureCollection creates a sparse unique index per unique field and a plain index per indexed field
func (s *MongoStore) EnsureCollection(ctx context.Context, spec CollectionSpec) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}
	coll := s.database.Collection(spec.Name)

	models := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("createdAt_order"),
	}}
	for _, field := range spec.UniqueFields {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetName(mongoUniqueIndex(field)).SetUnique(true).SetSparse(true),
		})
	}
	for _, field := range spec.IndexFields {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetName(field + "_idx"),
		})
	}
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return unavailable("ensure", spec.Name, err)
	}

	s.mu.Lock()
	s.unique[spec.Name] = append([]string(nil), spec.UniqueFields...)
	s.mu.Unlock()

	s.logger.Debug().Str("collection", spec.Name).Strs("unique", spec.UniqueFields).Msg("Mongo indexes ensured")
	return nil
}

// Collection implements Store
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{name: name, coll: s.database.Collection(name), store: s}
}

func (s *MongoStore) uniqueFields(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unique[name]
}

func mongoUniqueIndex(field string) string {
	return field + "_unique"
}

type mongoCollection struct {
	name  string
	coll  *mongo.Collection
	store *MongoStore
}

func (c *mongoCollection) Find(ctx context.Context, filter query.Filter) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := c.coll.Find(ctx, bsonFilter(filter), opts)
	if err != nil {
		return nil, unavailable("find", c.name, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("find", c.name, err)
	}
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, recordFromBSON(d))
	}
	return out, nil
}

func (c *mongoCollection) Get(ctx context.Context, id string) (*Record, error) {
	var doc bson.D
	err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(c.name, id)
		}
		return nil, unavailable("get", c.name, err)
	}
	rec := recordFromBSON(doc)
	return &rec, nil
}

func (c *mongoCollection) Insert(ctx context.Context, rec Record) error {
	if _, err := c.coll.InsertOne(ctx, recordToBSON(rec)); err != nil {
		return c.writeError("insert", err)
	}
	return nil
}

func (c *mongoCollection) Replace(ctx context.Context, rec Record) error {
	res, err := c.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: rec.ID}}, recordToBSON(rec))
	if err != nil {
		return c.writeError("replace", err)
	}
	if res.MatchedCount == 0 {
		return notFound(c.name, rec.ID)
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) (bool, error) {
	res, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, unavailable("delete", c.name, err)
	}
	return res.DeletedCount > 0, nil
}

func (c *mongoCollection) writeError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Collection: c.name, Field: duplicateField(err.Error(), c.store.uniqueFields(c.name))}
	}
	return unavailable(op, c.name, err)
}

// duplicateField finds which unique index an E11000 message names
func duplicateField(message string, unique []string) string {
	for _, field := range unique {
		if strings.Contains(message, "index: "+mongoUniqueIndex(field)+" ") {
			return field
		}
	}
	if strings.Contains(message, "index: _id_") {
		return "id"
	}
	return ""
}

// bsonFilter translates a filter into a MongoDB query document
func bsonFilter(filter query.Filter) bson.D {
	parts := make(bson.A, 0, len(filter.Constraints))
	for _, c := range filter.Constraints {
		switch c.Op {
		case query.OpEq:
			parts = append(parts, bson.D{{Key: c.Field, Value: c.Value}})
		case query.OpContainsAll:
			parts = append(parts, bson.D{{Key: c.Field, Value: bson.D{{Key: "$all", Value: c.Value}}}})
		case query.OpContains:
			needle, _ := c.Value.(string)
			parts = append(parts, bson.D{{Key: c.Field, Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(needle)},
				{Key: "$options", Value: "i"},
			}}})
		}
	}
	switch len(parts) {
	case 0:
		return bson.D{}
	case 1:
		return parts[0].(bson.D)
	default:
		return bson.D{{Key: "$and", Value: parts}}
	}
}

func recordToBSON(rec Record) bson.D {
	keys := make([]string, 0, len(rec.Data))
	for k := range rec.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := bson.D{{Key: "_id", Value: rec.ID}}
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: rec.Data[k]})
	}
	return append(doc,
		bson.E{Key: "createdAt", Value: rec.CreatedAt},
		bson.E{Key: "updatedAt", Value: rec.UpdatedAt},
	)
}

func recordFromBSON(doc bson.D) Record {
	rec := Record{Data: make(map[string]any, len(doc))}
	for _, e := range doc {
		switch e.Key {
		case "_id":
			rec.ID = fmt.Sprint(e.Value)
		case "createdAt":
			rec.CreatedAt = bsonTime(e.Value)
		case "updatedAt":
			rec.UpdatedAt = bsonTime(e.Value)
		default:
			rec.Data[e.Key] = fromBSON(e.Value)
		}
	}
	return rec
}

func bsonTime(v any) time.Time {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	default:
		return time.Time{}
	}
}

// fromBSON converts decoded BSON values into the JSON shapes the rest of the service uses
func fromBSON(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = fromBSON(e)
		}
		return m
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bson.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

// Package mongo stores transactions in MongoDB
// ("mongodb://host:27017" or "mongodb+srv://cluster.example.net").
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Schemes served by this driver.
const (
	Scheme    = "mongodb"
	SchemeSRV = "mongodb+srv"
)

type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

type Collection struct {
	coll *mongo.Collection
}

// document is the stored shape; the id is MongoDB's generated _id.
type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Amount      float64            `bson:"amount"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Type        string             `bson:"type"`
	Date        string             `bson:"date"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

var (
	_ storage.Database   = (*Database)(nil)
	_ storage.Collection = (*Collection)(nil)
	_ storage.DialFunc   = Dial
)

// Dial connects to the deployment at uri and verifies it with a ping.
func Dial(ctx context.Context, uri, name string) (storage.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Database{client: client, db: client.Database(name)}, nil
}

func (d *Database) Name() string { return d.db.Name() }

func (d *Database) Collection(name string) storage.Collection {
	return &Collection{coll: d.db.Collection(name)}
}

func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *Database) Close(ctx context.Context) error { return d.client.Disconnect(ctx) }

func (c *Collection) Insert(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	doc := toDocument(t)
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert document: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return t, nil
}

// FindNewestFirst sorts on createdAt and then _id, whose leading bytes are
// the insertion timestamp and counter.
func (c *Collection) FindNewestFirst(ctx context.Context) ([]core.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := c.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.transaction())
	}
	return out, nil
}

func toDocument(t core.Transaction) document {
	return document{
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Type:        string(t.Type),
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d document) transaction() core.Transaction {
	return core.Transaction{
		ID:          d.ID.Hex(),
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Type:        core.Type(d.Type),
		Date:        d.Date,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

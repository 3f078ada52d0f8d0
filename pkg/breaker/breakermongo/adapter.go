// Package breakermongo implements breaker.DatabaseAdapter over a single
// MongoDB collection, documents keyed by `_id` holding the raw
// stateJSON bytes.
//
// AtomicUpdate runs the read-transform-write cycle inside a session
// transaction, the same way semmongo's InsertSlot linearizes its own
// count-then-insert: MongoDB transactions require a replica-set-backed
// deployment (unavailable against a lone standalone mongod).
package breakermongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/aegiskit/aegis/pkg/breaker"
)

type document struct {
	Key       string `bson:"_id"`
	StateJSON []byte `bson:"stateJSON"`
}

// Adapter implements breaker.DatabaseAdapter over one MongoDB
// collection.
type Adapter struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New builds an Adapter. client is needed (in addition to coll) to open
// the session transaction AtomicUpdate requires.
func New(client *mongo.Client, coll *mongo.Collection) *Adapter {
	return &Adapter{client: client, coll: coll}
}

var _ breaker.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) Find(ctx context.Context, key string) ([]byte, error) {
	var doc document
	err := a.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.StateJSON, nil
}

func (a *Adapter) AtomicUpdate(ctx context.Context, key string, transform breaker.RawTransform) ([]byte, error) {
	session, err := a.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		var doc document
		err := a.coll.FindOne(sc, bson.M{"_id": key}).Decode(&doc)
		var raw []byte
		switch {
		case err == mongo.ErrNoDocuments:
			raw = nil
		case err != nil:
			return nil, err
		default:
			raw = doc.StateJSON
		}

		next, err := transform(raw)
		if err != nil {
			return nil, err
		}

		_, err = a.coll.UpdateOne(sc,
			bson.M{"_id": key},
			bson.M{"$set": bson.M{"stateJSON": next}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	next, _ := result.([]byte)
	return next, nil
}

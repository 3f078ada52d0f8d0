// Package lockmongo implements lock.DatabaseAdapter over a MongoDB
// collection via the official v2 driver.
package lockmongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/aegiskit/aegis/pkg/lock"
)

type document struct {
	Key        string     `bson:"_id"`
	Owner      string     `bson:"owner"`
	Expiration *time.Time `bson:"expiration"`
}

// Adapter implements lock.DatabaseAdapter over a MongoDB collection. The
// collection should have a unique index on _id (the default) and,
// optionally, a TTL index on expiration for passive cleanup of records
// this adapter's own expiry-driven promotion never revisits.
type Adapter struct {
	coll *mongo.Collection
}

// New builds an Adapter over coll.
func New(coll *mongo.Collection) *Adapter {
	return &Adapter{coll: coll}
}

var _ lock.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) Insert(ctx context.Context, key, owner string, exp time.Time) error {
	_, err := a.coll.InsertOne(ctx, document{Key: key, Owner: owner, Expiration: toPtr(exp)})
	if mongo.IsDuplicateKeyError(err) {
		return lock.ErrKeyAlreadyExists
	}
	return err
}

func (a *Adapter) Update(ctx context.Context, key, owner string, exp time.Time) (bool, error) {
	res, err := a.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"owner": owner, "expiration": toPtr(exp)}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (a *Adapter) Remove(ctx context.Context, key, owner string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *Adapter) RemoveUnowned(ctx context.Context, key string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *Adapter) Refresh(ctx context.Context, key, owner string, exp time.Time) (lock.RefreshResult, error) {
	res, err := a.coll.UpdateOne(ctx,
		bson.M{"_id": key, "owner": owner, "expiration": bson.M{"$ne": nil}},
		bson.M{"$set": bson.M{"expiration": toPtr(exp)}},
	)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	if res.ModifiedCount > 0 {
		return lock.Refreshed, nil
	}

	st, err := a.Find(ctx, key)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	if st == nil || st.Owner != owner {
		return lock.RefreshUnowned, nil
	}
	return lock.RefreshUnexpirable, nil
}

func (a *Adapter) Find(ctx context.Context, key string) (*lock.State, error) {
	var doc document
	err := a.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st := &lock.State{Owner: doc.Owner}
	if doc.Expiration != nil {
		st.Expiration = *doc.Expiration
	}
	return st, nil
}

func toPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

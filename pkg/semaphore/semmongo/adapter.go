// Package semmongo implements semaphore.DatabaseAdapter over a MongoDB
// collection. The count-then-insert-under-limit step
// runs inside a session transaction, so the count and the
// insert observe a consistent snapshot even under concurrent acquire
// storms; this requires a replica-set-backed deployment (MongoDB
// transactions are unavailable against a lone standalone mongod).
package semmongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/aegiskit/aegis/pkg/semaphore"
)

type slotDoc struct {
	Key        string     `bson:"key"`
	SlotID     string     `bson:"slot_id"`
	Expiration *time.Time `bson:"expiration"`
}

// Adapter implements semaphore.DatabaseAdapter over one MongoDB
// collection; documents are keyed by the compound (key, slot_id) pair,
// which callers should declare as a unique index.
type Adapter struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New builds an Adapter. client is needed (in addition to coll) to open
// the session transaction InsertSlot requires.
func New(client *mongo.Client, coll *mongo.Collection) *Adapter {
	return &Adapter{client: client, coll: coll}
}

var _ semaphore.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) InsertSlot(ctx context.Context, key, slotID string, limit int, exp time.Time) (bool, error) {
	session, err := a.client.StartSession()
	if err != nil {
		return false, err
	}
	defer session.EndSession(ctx)

	now := time.Now()
	result, err := session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		count, err := a.coll.CountDocuments(sc, bson.M{
			"key":     key,
			"slot_id": bson.M{"$ne": slotID},
			"$or": []bson.M{
				{"expiration": nil},
				{"expiration": bson.M{"$gt": now}},
			},
		})
		if err != nil {
			return false, err
		}
		if int(count) >= limit {
			return false, nil
		}

		_, err = a.coll.InsertOne(sc, slotDoc{Key: key, SlotID: slotID, Expiration: toPtr(exp)})
		if mongo.IsDuplicateKeyError(err) {
			return nil, semaphore.ErrKeyAlreadyExists
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	ok, _ := result.(bool)
	return ok, nil
}

func (a *Adapter) UpdateSlot(ctx context.Context, key, slotID string, exp time.Time) (bool, error) {
	res, err := a.coll.UpdateOne(ctx,
		bson.M{"key": key, "slot_id": slotID},
		bson.M{"$set": bson.M{"expiration": toPtr(exp)}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (a *Adapter) RemoveSlot(ctx context.Context, key, slotID string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"key": key, "slot_id": slotID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *Adapter) RemoveAllSlots(ctx context.Context, key string) (bool, error) {
	res, err := a.coll.DeleteMany(ctx, bson.M{"key": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *Adapter) FindSlot(ctx context.Context, key, slotID string) (*time.Time, error) {
	var doc slotDoc
	err := a.coll.FindOne(ctx, bson.M{"key": key, "slot_id": slotID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	exp := time.Time{}
	if doc.Expiration != nil {
		exp = *doc.Expiration
	}
	return &exp, nil
}

func (a *Adapter) FindState(ctx context.Context, key string) (*semaphore.State, error) {
	cur, err := a.coll.Find(ctx, bson.M{"key": key})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	st := &semaphore.State{}
	for cur.Next(ctx) {
		var doc slotDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		slot := semaphore.Slot{SlotID: doc.SlotID}
		if doc.Expiration != nil {
			slot.Expiration = *doc.Expiration
		}
		st.AcquiredSlots = append(st.AcquiredSlots, slot)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(st.AcquiredSlots) == 0 {
		return nil, nil
	}
	return st, nil
}

func toPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

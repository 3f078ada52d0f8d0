// Package cachemongo implements cache.Adapter over a MongoDB
// collection, using ReplaceOne/UpdateOne with upsert for the write
// paths. Values are opaque bytes stored as a single "value" field
// alongside an optional expiration timestamp.
package cachemongo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/aegiskit/aegis/pkg/cache"
)

type document struct {
	Key        string     `bson:"_id"`
	Value      []byte     `bson:"value"`
	Expiration *time.Time `bson:"expiration"`
}

// Adapter implements cache.Adapter over one MongoDB collection, keyed
// by cache key as the document _id.
type Adapter struct {
	coll *mongo.Collection
}

// New builds an Adapter over coll.
func New(coll *mongo.Collection) *Adapter {
	return &Adapter{coll: coll}
}

var _ cache.Adapter = (*Adapter)(nil)

func liveFilter(key string, now time.Time) bson.M {
	return bson.M{
		"_id": key,
		"$or": []bson.M{
			{"expiration": nil},
			{"expiration": bson.M{"$gt": now}},
		},
	}
}

func (a *Adapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc document
	err := a.coll.FindOne(ctx, liveFilter(key, time.Now())).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

func (a *Adapter) GetAndRemove(ctx context.Context, key string) ([]byte, bool, error) {
	var doc document
	err := a.coll.FindOneAndDelete(ctx, liveFilter(key, time.Now())).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

func (a *Adapter) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if _, found, err := a.Get(ctx, key); err != nil {
		return false, err
	} else if found {
		return false, nil
	}
	_, err := a.coll.ReplaceOne(ctx, bson.M{"_id": key},
		document{Key: key, Value: value, Expiration: toPtr(ttl)},
		options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) Put(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	_, existed, err := a.Get(ctx, key)
	if err != nil {
		return false, err
	}
	_, err = a.coll.ReplaceOne(ctx, bson.M{"_id": key},
		document{Key: key, Value: value, Expiration: toPtr(ttl)},
		options.Replace().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (a *Adapter) Update(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	res, err := a.coll.UpdateOne(ctx, liveFilter(key, time.Now()),
		bson.M{"$set": bson.M{"value": value, "expiration": toPtr(ttl)}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (a *Adapter) Remove(ctx context.Context, key string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *Adapter) RemoveMany(ctx context.Context, keys []string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	res, err := a.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (a *Adapter) RemoveAll(ctx context.Context) error {
	_, err := a.coll.DeleteMany(ctx, bson.M{})
	return err
}

func (a *Adapter) RemoveByKeyPrefix(ctx context.Context, prefix string) (int, error) {
	res, err := a.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$regex": "^" + regexEscape(prefix)}})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (a *Adapter) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	existing, found, err := a.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	var current int64
	if found {
		current, err = strconv.ParseInt(string(existing), 10, 64)
		if err != nil {
			return 0, cache.ErrNotInteger
		}
	}
	current += delta
	raw := []byte(strconv.FormatInt(current, 10))

	set := bson.M{"value": raw}
	if ttl > 0 {
		set["expiration"] = toPtr(ttl)
	}
	_, err = a.coll.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": set},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return 0, err
	}
	return current, nil
}

func toPtr(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}

func regexEscape(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		for j := 0; j < len(special); j++ {
			if c == special[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}

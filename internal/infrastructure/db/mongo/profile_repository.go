package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// ProfileRepository stores entitlement records in the `users` collection, keyed
// by the identity id.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(usersCollection)}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.EntitlementRecord, error) {
	var rec domain.EntitlementRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find profile", err)
	}
	return &rec, nil
}

// Create upserts with $setOnInsert, so a record written by a concurrent
// resolution is never overwritten.
func (r *ProfileRepository) Create(ctx context.Context, rec *domain.EntitlementRecord) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": rec.ID},
		bson.M{"$setOnInsert": bson.M{
			"email":             rec.Email,
			"display_name":      rec.DisplayName,
			"photo_url":         rec.PhotoURL,
			"subscription_tier": rec.SubscriptionTier,
			"role":              rec.Role,
			"created_at":        rec.CreatedAt,
			"schema_version":    rec.SchemaVersion,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return storeErr("create profile", err)
	}
	return nil
}

func (r *ProfileRepository) SetTier(ctx context.Context, id string, tier domain.Tier) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"subscription_tier": tier}},
	)
	if err != nil {
		return storeErr("set tier", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ProfileRepository) ListByEmail(ctx context.Context, email string) ([]*domain.EntitlementRecord, error) {
	return r.find(ctx, bson.M{"email": email})
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.EntitlementRecord, error) {
	return r.find(ctx, bson.M{})
}

func (r *ProfileRepository) find(ctx context.Context, filter bson.M) ([]*domain.EntitlementRecord, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, storeErr("list profiles", err)
	}
	defer cur.Close(ctx)

	var out []*domain.EntitlementRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("decode profiles", err)
	}
	return out, nil
}

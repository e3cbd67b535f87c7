package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// GalleryRepository is the append-only `images` collection.
type GalleryRepository struct {
	coll *mongo.Collection
}

func NewGalleryRepository(db *mongo.Database) *GalleryRepository {
	return &GalleryRepository{coll: db.Collection(imagesCollection)}
}

func (r *GalleryRepository) Append(ctx context.Context, rec *domain.GenerationRecord) error {
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return storeErr("insert image", err)
	}
	return nil
}

// ListRecent orders by creation time, then by id so records sharing a
// timestamp keep a stable order.
func (r *GalleryRepository) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list images", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.GenerationRecord, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, storeErr("decode images", err)
	}
	return out, nil
}

package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"wanderlust/internal/domain"
)

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Comment   string             `bson:"comment"`
	Rating    int                `bson:"rating"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	d := reviewDoc{
		ID:        primitive.NewObjectID(),
		Comment:   rv.Comment,
		Rating:    rv.Rating,
		Author:    rv.Author,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.collection.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	rv.ID = d.ID.Hex()
	rv.CreatedAt = d.CreatedAt
	return nil
}

// ByIDs returns the reviews in the order of ids. Unknown or malformed IDs
// are skipped.
func (r *ReviewRepository) ByIDs(ctx context.Context, ids []string) ([]domain.Review, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []domain.Review{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reviewDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	byID := make(map[primitive.ObjectID]reviewDoc, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]domain.Review, 0, len(docs))
	for _, oid := range oids {
		d, ok := byID[oid]
		if !ok {
			continue
		}
		out = append(out, domain.Review{
			ID:        d.ID.Hex(),
			Comment:   d.Comment,
			Rating:    d.Rating,
			Author:    d.Author,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrReviewNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete reviews: %w", err)
	}
	return res.DeletedCount, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}

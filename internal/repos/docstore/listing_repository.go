package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wanderlust/internal/domain"
	"wanderlust/internal/ranking"
)

type imageDoc struct {
	URL      string `bson:"url"`
	Filename string `bson:"filename"`
}

type listingDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Image       imageDoc             `bson:"image"`
	Price       float64              `bson:"price"`
	Location    string               `bson:"location"`
	Country     string               `bson:"country"`
	Reviews     []primitive.ObjectID `bson:"reviews"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

func (d listingDoc) toDomain() domain.Listing {
	return domain.Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Image:       domain.Image{URL: d.Image.URL, Filename: d.Image.Filename},
		Price:       d.Price,
		Location:    d.Location,
		Country:     d.Country,
		Reviews:     hexes(d.Reviews),
		CreatedAt:   d.CreatedAt,
	}
}

// experienceDoc is the shape left by the ranking pipeline's $project stage.
type experienceDoc struct {
	ID            primitive.ObjectID   `bson:"_id"`
	Title         string               `bson:"title"`
	Description   string               `bson:"description"`
	Image         imageDoc             `bson:"image"`
	Price         float64              `bson:"price"`
	Location      string               `bson:"location"`
	Country       string               `bson:"country"`
	ReviewCount   int                  `bson:"reviewCount"`
	AverageRating float64              `bson:"averageRating"`
	Reviews       []primitive.ObjectID `bson:"reviews"`
}

type ListingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{collection: db.Collection(listingsCollection)}
}

func (r *ListingRepository) List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	filter := bson.M{}
	if f.Location != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Location), Options: "i"}
		filter["$or"] = bson.A{bson.M{"location": rx}, bson.M{"country": rx}}
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	out := []domain.Listing{}
	for cursor.Next(ctx) {
		var d listingDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}
		out = append(out, d.toDomain())
	}
	return out, cursor.Err()
}

func (r *ListingRepository) Get(ctx context.Context, id string) (domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	var d listingDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to get listing: %w", err)
	}
	return d.toDomain(), nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	d := listingDoc{
		ID:          primitive.NewObjectID(),
		Title:       l.Title,
		Description: l.Description,
		Image:       imageDoc{URL: l.Image.URL, Filename: l.Image.Filename},
		Price:       l.Price,
		Location:    l.Location,
		Country:     l.Country,
		Reviews:     []primitive.ObjectID{},
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.collection.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	l.ID = d.ID.Hex()
	l.CreatedAt = d.CreatedAt
	l.Reviews = []string{}
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	oid, err := primitive.ObjectIDFromHex(l.ID)
	if err != nil {
		return domain.ErrListingNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       l.Title,
		"description": l.Description,
		"image":       imageDoc{URL: l.Image.URL, Filename: l.Image.Filename},
		"price":       l.Price,
		"location":    l.Location,
		"country":     l.Country,
	}})
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) (domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	var d listingDoc
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("failed to delete listing: %w", err)
	}
	return d.toDomain(), nil
}

func (r *ListingRepository) AttachReview(ctx context.Context, listingID, reviewID string) error {
	return r.updateRefs(ctx, listingID, reviewID, "$push")
}

func (r *ListingRepository) DetachReview(ctx context.Context, listingID, reviewID string) error {
	return r.updateRefs(ctx, listingID, reviewID, "$pull")
}

func (r *ListingRepository) updateRefs(ctx context.Context, listingID, reviewID, op string) error {
	lid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return domain.ErrListingNotFound
	}
	rid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		if op == "$pull" {
			// nothing with that id can be referenced; still 404 on a missing listing
			_, err := r.Get(ctx, listingID)
			return err
		}
		return domain.ErrReviewNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": lid}, bson.M{op: bson.M{"reviews": rid}})
	if err != nil {
		return fmt.Errorf("failed to update listing reviews: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// Rank runs the experiences aggregation.
func (r *ListingRepository) Rank(ctx context.Context, p ranking.Params) ([]domain.Experience, error) {
	cursor, err := r.collection.Aggregate(ctx, Pipeline(p))
	if err != nil {
		return nil, fmt.Errorf("failed to rank listings: %w", err)
	}
	defer cursor.Close(ctx)

	out := []domain.Experience{}
	for cursor.Next(ctx) {
		var d experienceDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode experience: %w", err)
		}
		out = append(out, domain.Experience{
			ID:            d.ID.Hex(),
			Title:         d.Title,
			Description:   d.Description,
			Image:         domain.Image{URL: d.Image.URL, Filename: d.Image.Filename},
			Price:         d.Price,
			Location:      d.Location,
			Country:       d.Country,
			ReviewCount:   d.ReviewCount,
			AverageRating: d.AverageRating,
			Reviews:       hexes(d.Reviews),
		})
	}
	return out, cursor.Err()
}

var sortFields = map[ranking.Field]string{
	ranking.FieldPrice:         "price",
	ranking.FieldAverageRating: "averageRating",
	ranking.FieldReviewCount:   "reviewCount",
	ranking.FieldCreatedAt:     "createdAt",
	ranking.FieldInsertion:     "_id", // ObjectIDs grow with insertion time
}

// Pipeline compiles p into the aggregation run by Rank.
func Pipeline(p ranking.Params) mongo.Pipeline {
	var pipe mongo.Pipeline

	if p.FiltersPrice() {
		price := bson.D{}
		if p.MinPrice != nil {
			price = append(price, bson.E{Key: "$gte", Value: *p.MinPrice})
		}
		if p.MaxPrice != nil {
			price = append(price, bson.E{Key: "$lte", Value: *p.MaxPrice})
		}
		pipe = append(pipe, bson.D{{Key: "$match", Value: bson.D{{Key: "price", Value: price}}}})
	}

	pipe = append(pipe,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reviewsCollection},
			{Key: "localField", Value: "reviews"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "reviewDocs"},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "reviewCount", Value: bson.D{{Key: "$size", Value: "$reviewDocs"}}},
			{Key: "averageRating", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$avg", Value: "$reviewDocs.rating"}}, 0,
			}}}},
		}}},
	)

	if p.FiltersRating() {
		pipe = append(pipe, bson.D{{Key: "$match", Value: bson.D{
			{Key: "averageRating", Value: bson.D{{Key: "$gte", Value: *p.MinRating}}},
		}}})
	}

	sort := bson.D{}
	for _, k := range p.Keys() {
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: sortFields[k.Field], Value: dir})
	}
	pipe = append(pipe,
		bson.D{{Key: "$sort", Value: sort}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "description", Value: 1},
			{Key: "image", Value: 1},
			{Key: "price", Value: 1},
			{Key: "location", Value: 1},
			{Key: "country", Value: 1},
			{Key: "reviewCount", Value: 1},
			{Key: "averageRating", Value: 1},
			{Key: "reviews", Value: 1},
		}}},
	)
	return pipe
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

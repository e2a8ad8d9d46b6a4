package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"wanderlust/internal/domain"
	"wanderlust/internal/ranking"
)

type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

type listingRow struct {
	ID            string  `db:"id"`
	Title         string  `db:"title"`
	Description   string  `db:"description"`
	ImageURL      string  `db:"image_url"`
	ImageFilename string  `db:"image_filename"`
	Price         float64 `db:"price"`
	Location      string  `db:"location"`
	Country       string  `db:"country"`
	CreatedAt     string  `db:"created_at"`
}

func (r listingRow) toDomain(reviews []string) domain.Listing {
	if reviews == nil {
		reviews = []string{}
	}
	return domain.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Image:       domain.Image{URL: r.ImageURL, Filename: r.ImageFilename},
		Price:       r.Price,
		Location:    r.Location,
		Country:     r.Country,
		Reviews:     reviews,
		CreatedAt:   parseTS(r.CreatedAt),
	}
}

const listingCols = `id, title, description, image_url, image_filename, price, location, country, created_at`

func (r *ListingRepo) List(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	where := `1 = 1`
	args := []any{}
	if f.Location != "" {
		where += ` AND (unicode_lower(location) LIKE ? ESCAPE '\' OR unicode_lower(country) LIKE ? ESCAPE '\')`
		pat := "%" + escapeLike(strings.ToLower(f.Location)) + "%"
		args = append(args, pat, pat)
	}
	rows := []listingRow{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+listingCols+` FROM listings WHERE `+where+` ORDER BY rowid`, args...); err != nil {
		return nil, fmt.Errorf("ListingRepo.List: %w", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	refs, err := reviewRefs(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain(refs[row.ID])
	}
	return out, nil
}

func (r *ListingRepo) Get(ctx context.Context, id string) (domain.Listing, error) {
	var row listingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+listingCols+` FROM listings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("ListingRepo.Get: %w", err)
	}
	refs, err := reviewRefs(ctx, r.db, []string{id})
	if err != nil {
		return domain.Listing{}, err
	}
	return row.toDomain(refs[id]), nil
}

func (r *ListingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM listings`); err != nil {
		return 0, fmt.Errorf("ListingRepo.Count: %w", err)
	}
	return n, nil
}

// Create assigns ID and CreatedAt and inserts the listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	l.Reviews = []string{}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO listings (`+listingCols+`)
		VALUES (:id, :title, :description, :image_url, :image_filename, :price, :location, :country, :created_at)
	`, listingRow{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		ImageURL:      l.Image.URL,
		ImageFilename: l.Image.Filename,
		Price:         l.Price,
		Location:      l.Location,
		Country:       l.Country,
		CreatedAt:     formatTS(l.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("ListingRepo.Create: %w", err)
	}
	return nil
}

// Update replaces the editable fields. ID, CreatedAt and the review
// references are kept.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings SET
			title = ?, description = ?, image_url = ?, image_filename = ?,
			price = ?, location = ?, country = ?
		WHERE id = ?
	`, l.Title, l.Description, l.Image.URL, l.Image.Filename, l.Price, l.Location, l.Country, l.ID)
	if err != nil {
		return fmt.Errorf("ListingRepo.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// Delete removes the listing and returns it as it was, review references
// included. The reviews themselves are left for the caller.
func (r *ListingRepo) Delete(ctx context.Context, id string) (domain.Listing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Listing{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var row listingRow
	err = tx.GetContext(ctx, &row, `SELECT `+listingCols+` FROM listings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrListingNotFound
	}
	if err != nil {
		return domain.Listing{}, fmt.Errorf("ListingRepo.Delete: %w", err)
	}
	refs, err := reviewRefs(ctx, tx, []string{id})
	if err != nil {
		return domain.Listing{}, err
	}
	// listing_reviews rows go with the listing (ON DELETE CASCADE)
	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id); err != nil {
		return domain.Listing{}, fmt.Errorf("ListingRepo.Delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Listing{}, err
	}
	return row.toDomain(refs[id]), nil
}

// AttachReview appends reviewID to the listing's reference list.
func (r *ListingRepo) AttachReview(ctx context.Context, listingID, reviewID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(1) FROM listings WHERE id = ?`, listingID); err != nil {
		return fmt.Errorf("ListingRepo.AttachReview: %w", err)
	}
	if n == 0 {
		return domain.ErrListingNotFound
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO listing_reviews (listing_id, review_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM listing_reviews WHERE listing_id = ?
	`, listingID, reviewID, listingID); err != nil {
		return fmt.Errorf("ListingRepo.AttachReview: %w", err)
	}
	return tx.Commit()
}

// DetachReview drops reviewID from the listing's reference list. A
// reference that is not there is not an error.
func (r *ListingRepo) DetachReview(ctx context.Context, listingID, reviewID string) error {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM listings WHERE id = ?`, listingID); err != nil {
		return fmt.Errorf("ListingRepo.DetachReview: %w", err)
	}
	if n == 0 {
		return domain.ErrListingNotFound
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM listing_reviews WHERE listing_id = ? AND review_id = ?`, listingID, reviewID); err != nil {
		return fmt.Errorf("ListingRepo.DetachReview: %w", err)
	}
	return nil
}

type experienceRow struct {
	listingRow
	ReviewCount   int     `db:"review_count"`
	AverageRating float64 `db:"average_rating"`
}

var orderColumns = map[ranking.Field]string{
	ranking.FieldPrice:         "l.price",
	ranking.FieldAverageRating: "average_rating",
	ranking.FieldReviewCount:   "review_count",
	ranking.FieldCreatedAt:     "l.created_at",
	ranking.FieldInsertion:     "l.rowid",
}

// Rank runs the experiences query: price filter before the join, review
// statistics per listing, rating filter after aggregation, then ordering.
func (r *ListingRepo) Rank(ctx context.Context, p ranking.Params) ([]domain.Experience, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if p.MinPrice != nil {
		where = append(where, "l.price >= ?")
		args = append(args, *p.MinPrice)
	}
	if p.MaxPrice != nil {
		where = append(where, "l.price <= ?")
		args = append(args, *p.MaxPrice)
	}
	having := ""
	if p.MinRating != nil {
		having = "HAVING average_rating >= ?"
		args = append(args, *p.MinRating)
	}
	var order []string
	for _, k := range p.Keys() {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		order = append(order, orderColumns[k.Field]+" "+dir)
	}

	q := `
	  SELECT
	    l.id, l.title, l.description, l.image_url, l.image_filename,
	    l.price, l.location, l.country, l.created_at,
	    COUNT(rv.id) AS review_count,
	    COALESCE(AVG(rv.rating), 0.0) AS average_rating
	  FROM listings l
	  LEFT JOIN listing_reviews lr ON lr.listing_id = l.id
	  LEFT JOIN reviews rv ON rv.id = lr.review_id
	  WHERE ` + strings.Join(where, " AND ") + `
	  GROUP BY l.id
	  ` + having + `
	  ORDER BY ` + strings.Join(order, ", ")

	rows := []experienceRow{}
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("ListingRepo.Rank: %w", err)
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	refs, err := reviewRefs(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Experience, len(rows))
	for i, row := range rows {
		l := row.toDomain(refs[row.ID])
		out[i] = domain.Experience{
			ID:            l.ID,
			Title:         l.Title,
			Description:   l.Description,
			Image:         l.Image,
			Price:         l.Price,
			Location:      l.Location,
			Country:       l.Country,
			ReviewCount:   row.ReviewCount,
			AverageRating: row.AverageRating,
			Reviews:       l.Reviews,
		}
	}
	return out, nil
}

// reviewRefs loads the ordered review IDs for each listing.
func reviewRefs(ctx context.Context, q sqlx.QueryerContext, listingIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
		SELECT listing_id, review_id FROM listing_reviews
		WHERE listing_id IN (?)
		ORDER BY listing_id, position
	`, listingIDs)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ListingID string `db:"listing_id"`
		ReviewID  string `db:"review_id"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reviewRefs: %w", err)
	}
	for _, row := range rows {
		out[row.ListingID] = append(out[row.ListingID], row.ReviewID)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

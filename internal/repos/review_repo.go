package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"wanderlust/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

type reviewRow struct {
	ID        string `db:"id"`
	Comment   string `db:"comment"`
	Rating    int    `db:"rating"`
	Author    string `db:"author"`
	CreatedAt string `db:"created_at"`
}

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	rv.ID = uuid.NewString()
	rv.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, comment, rating, author, created_at) VALUES (?, ?, ?, ?, ?)`,
		rv.ID, rv.Comment, rv.Rating, rv.Author, formatTS(rv.CreatedAt))
	if err != nil {
		return fmt.Errorf("ReviewRepo.Create: %w", err)
	}
	return nil
}

// ByIDs returns the reviews in the order of ids. Unknown IDs are skipped.
func (r *ReviewRepo) ByIDs(ctx context.Context, ids []string) ([]domain.Review, error) {
	if len(ids) == 0 {
		return []domain.Review{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, comment, rating, author, created_at FROM reviews WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("ReviewRepo.ByIDs: %w", err)
	}
	byID := make(map[string]reviewRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	out := make([]domain.Review, 0, len(rows))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, domain.Review{
			ID:        row.ID,
			Comment:   row.Comment,
			Rating:    row.Rating,
			Author:    row.Author,
			CreatedAt: parseTS(row.CreatedAt),
		})
	}
	return out, nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ReviewRepo.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM reviews WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ReviewRepo.DeleteByIDs: %w", err)
	}
	return res.RowsAffected()
}

package repos

import (
	"context"
	"database/sql/driver"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

// unicodeLower folds case with Go's tables. SQLite's LOWER() only folds ASCII,
// and search terms are folded with strings.ToLower.
func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite has a single writer, and ":memory:" databases
	// are per-connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Listings
CREATE TABLE IF NOT EXISTS listings(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  image_url TEXT NOT NULL,
  image_filename TEXT NOT NULL,
  price REAL NOT NULL CHECK (price >= 0),
  location TEXT NOT NULL,
  country TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_price      ON listings(price);
CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);

-- Reviews (no back-reference; listings own the relation)
CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  comment TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  author TEXT NOT NULL,
  created_at TEXT NOT NULL
);

-- Ordered review references held by a listing
CREATE TABLE IF NOT EXISTS listing_reviews(
  listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
  review_id  TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
  position   INTEGER NOT NULL,
  PRIMARY KEY (listing_id, review_id)
);
CREATE INDEX IF NOT EXISTS idx_listing_reviews_review ON listing_reviews(review_id);
`
	_, err := db.Exec(schema)
	return err
}

// Ping is used by the health check.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

package domain

import (
	"errors"
	"time"
)

const (
	DefaultImageURL      = "https://images.unsplash.com/photo-1506744038136-46273834b3fb?auto=format&fit=crop&w=800&q=80"
	DefaultImageFilename = "listingimage"
	DefaultAuthor        = "Anonymous"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrReviewNotFound  = errors.New("review not found")
)

type Image struct {
	URL      string
	Filename string
}

type Listing struct {
	ID          string
	Title       string
	Description string
	Image       Image
	Price       float64
	Location    string
	Country     string
	Reviews     []string // review IDs, display order
	CreatedAt   time.Time
}

// ApplyDefaults fills in the placeholder image when none was supplied.
func (l *Listing) ApplyDefaults() {
	if l.Image.URL == "" {
		l.Image.URL = DefaultImageURL
	}
	if l.Image.Filename == "" {
		l.Image.Filename = DefaultImageFilename
	}
}

type Review struct {
	ID        string
	Comment   string
	Rating    int
	Author    string
	CreatedAt time.Time
}

// ListingDetail is a listing with its reviews resolved in display order.
type ListingDetail struct {
	Listing
	ReviewDocs []Review
}

// ListingFilter narrows the plain listing index.
type ListingFilter struct {
	Location string // substring of location or country, case-insensitive
}

// Experience is the projection produced by the ranking query.
type Experience struct {
	ID            string
	Title         string
	Description   string
	Image         Image
	Price         float64
	Location      string
	Country       string
	ReviewCount   int
	AverageRating float64
	Reviews       []string
}

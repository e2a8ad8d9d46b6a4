// Package ranking describes the experiences view: which listings qualify,
// how they are enriched with review statistics, and in what order they are
// shown. Stores compile a Params into their own query language.
package ranking

import (
	"strings"

	"wanderlust/internal/validate"
)

type Sort string

const (
	SortPopular   Sort = "popular"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortRating    Sort = "rating"
	SortNewest    Sort = "newest"
)

// Sorts lists every accepted sort value, default first.
var Sorts = []Sort{SortPopular, SortPriceLow, SortPriceHigh, SortRating, SortNewest}

// ParseSort maps a client value onto a Sort. Unknown values mean popular.
func ParseSort(s string) Sort {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, known := range Sorts {
		if string(known) == s {
			return known
		}
	}
	return SortPopular
}

// Field names a sortable attribute of an enriched listing.
type Field string

const (
	FieldPrice         Field = "price"
	FieldAverageRating Field = "averageRating"
	FieldReviewCount   Field = "reviewCount"
	FieldCreatedAt     Field = "createdAt"
	// FieldInsertion is the store's natural insertion order.
	FieldInsertion Field = "insertion"
)

type Key struct {
	Field Field
	Desc  bool
}

// Params is one ranking request. Nil bounds are unconstrained.
type Params struct {
	Sort      Sort
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

// ParseParams builds Params from raw query values. Numbers that do not
// parse are dropped; their names are returned so the caller can log them.
func ParseParams(sort, minPrice, maxPrice, minRating string) (Params, []string) {
	p := Params{Sort: ParseSort(sort)}
	var ignored []string
	for _, f := range []struct {
		name string
		raw  string
		dst  **float64
	}{
		{"minPrice", minPrice, &p.MinPrice},
		{"maxPrice", maxPrice, &p.MaxPrice},
		{"minRating", minRating, &p.MinRating},
	} {
		n, ok := validate.OptionalFloat(f.raw)
		if !ok {
			ignored = append(ignored, f.name)
			continue
		}
		*f.dst = n
	}
	return p, ignored
}

// FiltersPrice reports whether the pre-join price stage applies.
func (p Params) FiltersPrice() bool {
	return p.MinPrice != nil || p.MaxPrice != nil
}

// FiltersRating reports whether the post-join rating stage applies.
func (p Params) FiltersRating() bool {
	return p.MinRating != nil
}

// Keys returns the ordered sort keys. The last key is always insertion
// order so equal rows come back in a stable sequence.
func (p Params) Keys() []Key {
	var keys []Key
	switch p.Sort {
	case SortPriceLow:
		keys = []Key{{Field: FieldPrice}}
	case SortPriceHigh:
		keys = []Key{{Field: FieldPrice, Desc: true}}
	case SortRating:
		keys = []Key{{Field: FieldAverageRating, Desc: true}}
	case SortNewest:
		keys = []Key{{Field: FieldCreatedAt, Desc: true}}
	default:
		keys = []Key{{Field: FieldReviewCount, Desc: true}, {Field: FieldAverageRating, Desc: true}}
	}
	return append(keys, Key{Field: FieldInsertion})
}

// Label is the human name of a sort value, for the view.
func (s Sort) Label() string {
	switch s {
	case SortPriceLow:
		return "Price: low to high"
	case SortPriceHigh:
		return "Price: high to low"
	case SortRating:
		return "Top rated"
	case SortNewest:
		return "Newest"
	}
	return "Most popular"
}

package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"wanderlust/internal/domain"
)

var (
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	v = newValidator()
)

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form names so messages match what the user typed into.
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = vv.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		n, ok := parseNumber(fl.Field().String())
		return ok && n >= 0
	})
	_ = vv.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 1 && n <= 5
	})
	return vv
}

// FieldError is one violated constraint.
type FieldError struct {
	Field   string
	Message string
}

// Errors lists every violated constraint of a payload.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, ",")
}

// ListingInput is the create/update form for a listing.
type ListingInput struct {
	Title       string `form:"title" json:"title" validate:"required,min=3,max=100"`
	Description string `form:"description" json:"description" validate:"required,min=10,max=1000"`
	Image       string `form:"image" json:"image"`
	Price       string `form:"price" json:"price" validate:"required,price"`
	Location    string `form:"location" json:"location" validate:"required,min=2,max=100"`
	Country     string `form:"country" json:"country" validate:"required,min=2,max=100"`
}

// ReviewInput is the review submission form.
type ReviewInput struct {
	Comment string `form:"comment" json:"comment" validate:"required,min=10,max=500"`
	Rating  string `form:"rating" json:"rating" validate:"required,rating"`
	Author  string `form:"author" json:"author" validate:"omitempty,min=2,max=50"`
}

// Listing checks in and builds the listing it describes. Defaults are applied;
// ID, reviews and timestamps are left for the store.
func Listing(in ListingInput) (domain.Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	in.Price = strings.TrimSpace(in.Price)
	in.Location = strings.TrimSpace(in.Location)
	in.Country = strings.TrimSpace(in.Country)
	if err := check(in); err != nil {
		return domain.Listing{}, err
	}
	price, _ := parseNumber(in.Price)
	l := domain.Listing{
		Title:       in.Title,
		Description: in.Description,
		Image:       domain.Image{URL: in.Image},
		Price:       price,
		Location:    in.Location,
		Country:     in.Country,
	}
	l.ApplyDefaults()
	return l, nil
}

// Review checks in and builds the review it describes.
func Review(in ReviewInput) (domain.Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	in.Rating = strings.TrimSpace(in.Rating)
	in.Author = strings.TrimSpace(in.Author)
	if err := check(in); err != nil {
		return domain.Review{}, err
	}
	rating, _ := strconv.Atoi(in.Rating)
	author := in.Author
	if author == "" {
		author = domain.DefaultAuthor
	}
	return domain.Review{Comment: in.Comment, Rating: rating, Author: author}, nil
}

func check(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", f)
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", f, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", f, fe.Param())
	case "price":
		if _, ok := parseNumber(fmt.Sprint(fe.Value())); !ok {
			return fmt.Sprintf("%q must be a number", f)
		}
		return fmt.Sprintf("%q must be greater than or equal to 0", f)
	case "rating":
		return fmt.Sprintf("%q must be an integer between 1 and 5", f)
	}
	return fmt.Sprintf("%q is invalid", f)
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// OptionalFloat parses a numeric query parameter. Anything that is not a
// finite number counts as absent.
func OptionalFloat(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, ok := parseNumber(s)
	if !ok {
		return nil, false
	}
	return &n, true
}

// ID validates a resource identifier taken from the path.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Location normalizes the listing search term: trimmed, lowercased, capped at 100 chars.
func Location(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}

package services

import (
	"context"

	"wanderlust/internal/domain"
)

var sampleListings = []domain.Listing{
	{
		Title:       "Cozy Beachfront Cottage",
		Description: "Wake up to the sound of waves in this small cottage a few steps from the sand.",
		Image:       domain.Image{URL: "https://images.unsplash.com/photo-1552733407-5d5c46c3bb3b?auto=format&fit=crop&w=800&q=60", Filename: "listingimage"},
		Price:       1500,
		Location:    "Malibu",
		Country:     "United States",
	},
	{
		Title:       "Modern Loft in Downtown",
		Description: "Open-plan loft with city views, close to galleries, restaurants and nightlife.",
		Image:       domain.Image{URL: "https://images.unsplash.com/photo-1501785888041-af3ef285b470?auto=format&fit=crop&w=800&q=60", Filename: "listingimage"},
		Price:       1200,
		Location:    "New York City",
		Country:     "United States",
	},
	{
		Title:       "Mountain Retreat",
		Description: "A quiet cabin in the mountains with a wood stove and hiking trails at the door.",
		Image:       domain.Image{URL: "https://images.unsplash.com/photo-1571896349842-33c89424de2d?auto=format&fit=crop&w=800&q=60", Filename: "listingimage"},
		Price:       1000,
		Location:    "Aspen",
		Country:     "United States",
	},
	{
		Title:       "Historic Villa in Tuscany",
		Description: "Restored villa among vineyards and olive groves, an hour from Florence.",
		Image:       domain.Image{URL: "https://images.unsplash.com/photo-1566073771259-6a8506099945?auto=format&fit=crop&w=800&q=60", Filename: "listingimage"},
		Price:       2500,
		Location:    "Florence",
		Country:     "Italy",
	},
	{
		Title:       "Treehouse Hideaway",
		Description: "Sleep among the treetops in this hand-built treehouse overlooking the rainforest.",
		Price:       800,
		Location:    "Portland",
		Country:     "United States",
	},
	{
		Title:       "Beach Hut by the Backwaters",
		Description: "Simple thatched hut on a quiet beach, with backwater boat trips nearby.",
		Price:       400,
		Location:    "Goa",
		Country:     "India",
	},
	{
		Title:       "Ryokan with Private Onsen",
		Description: "Traditional inn with tatami rooms, kaiseki dinners and a private hot spring bath.",
		Image:       domain.Image{URL: "https://images.unsplash.com/photo-1493976040374-85c8e12f0c0e?auto=format&fit=crop&w=800&q=60", Filename: "listingimage"},
		Price:       3000,
		Location:    "Kyoto",
		Country:     "Japan",
	},
	{
		Title:       "Desert Glamping Tent",
		Description: "Furnished tent under the stars with camel treks and sandboarding on offer.",
		Price:       600,
		Location:    "Wadi Rum",
		Country:     "Jordan",
	},
}

// SeedIfEmpty inserts the sample listings when the store holds none. It
// returns how many were inserted.
func SeedIfEmpty(ctx context.Context, listings ListingStore) (int, error) {
	n, err := listings.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	for i, l := range sampleListings {
		l.ApplyDefaults()
		if err := listings.Create(ctx, &l); err != nil {
			return i, err
		}
	}
	return len(sampleListings), nil
}

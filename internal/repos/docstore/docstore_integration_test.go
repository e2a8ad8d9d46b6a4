//go:build integration

package docstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/domain"
	"wanderlust/internal/ranking"
	"wanderlust/internal/repos/docstore"
)

func startMongo(t *testing.T) *docstore.MongoDB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://127.0.0.1:%s", resource.GetPort("27017/tcp"))
	var m *docstore.MongoDB
	if err := pool.Retry(func() error {
		var e error
		m, e = docstore.Open(docstore.Config{URI: uri, Database: "wanderlust_test", ConnectTimeout: 5 * time.Second})
		return e
	}); err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestDocstore_RankAndCascadeRefs(t *testing.T) {
	m := startMongo(t)
	ctx := context.Background()
	listings := docstore.NewListingRepository(m.Database)
	reviews := docstore.NewReviewRepository(m.Database)

	mk := func(title string, price float64, ratings ...int) domain.Listing {
		l := domain.Listing{Title: title, Description: title, Price: price, Location: "Goa", Country: "India"}
		l.ApplyDefaults()
		require.NoError(t, listings.Create(ctx, &l))
		for _, r := range ratings {
			rv := domain.Review{Comment: "c", Rating: r, Author: "x"}
			require.NoError(t, reviews.Create(ctx, &rv))
			require.NoError(t, listings.AttachReview(ctx, l.ID, rv.ID))
		}
		return l
	}
	a := mk("A", 50, 5, 5)
	b := mk("B", 150)
	c := mk("C", 80, 3)

	got, err := listings.Rank(ctx, ranking.Params{Sort: ranking.SortPriceLow})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{a.ID, c.ID, b.ID}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, 2, got[0].ReviewCount)
	assert.InDelta(t, 5.0, got[0].AverageRating, 1e-9)
	assert.Equal(t, 0, got[2].ReviewCount)
	assert.InDelta(t, 0.0, got[2].AverageRating, 1e-9)

	four := 4.0
	got, err = listings.Rank(ctx, ranking.Params{Sort: ranking.SortPopular, MinRating: &four})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	old, err := listings.Delete(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, old.Reviews, 2)
	n, err := reviews.DeleteByIDs(ctx, old.Reviews)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, err := reviews.ByIDs(ctx, old.Reviews)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = listings.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	_, err = listings.Get(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/repository"
	"github.com/shinyyama/reconnect/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *testutil.MemoryRepo, items ...model.FoundItem) {
	t.Helper()
	for i := range items {
		require.NoError(t, repo.Create(context.Background(), &items[i]))
	}
}

func strPtr(s string) *string { return &s }

func TestSearchRequiresCriteria(t *testing.T) {
	svc := NewSearchService(testutil.NewMemoryRepo())
	_, err := svc.Search(context.Background(), SearchQuery{Product: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MsgMissingCriteria, verr.Reason)
}

func TestSearchSemantics(t *testing.T) {
	repo := testutil.NewMemoryRepo()
	seed(t, repo,
		model.FoundItem{Description: "Black Backpack", Category: "Bag", City: "Pune", ContactNo: "1"},
		model.FoundItem{Description: "Keys on a ring", Category: "Key", City: "Mumbai", LocationDesc: strPtr("Pune station"), ContactNo: "2"},
		model.FoundItem{Description: "Red wallet", Category: "Wallet", City: "Delhi", ContactNo: "3"},
	)
	svc := NewSearchService(repo)
	ctx := context.Background()

	got, err := svc.Search(ctx, SearchQuery{Product: "backpack"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Black Backpack", got[0].Description)

	got, err = svc.Search(ctx, SearchQuery{Category: "Bags"})
	require.NoError(t, err)
	assert.Empty(t, got, "category is exact-match")
	assert.NotNil(t, got)

	got, err = svc.Search(ctx, SearchQuery{Location: "pune"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Keys on a ring", got[0].Description, "most recent first")

	got, err = svc.Search(ctx, SearchQuery{Location: "pune", Category: "Bag"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].FinderContact)
}

func TestSearchCapAndOrdering(t *testing.T) {
	repo := testutil.NewMemoryRepo()
	for i := 0; i < 60; i++ {
		seed(t, repo, model.FoundItem{Description: fmt.Sprintf("umbrella %d", i), Category: "Other", ContactNo: "x"})
	}
	got, err := NewSearchService(repo).Search(context.Background(), SearchQuery{Product: "umbrella"})
	require.NoError(t, err)
	require.Len(t, got, repository.MaxSearchResults)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].FoundDate.After(got[i-1].FoundDate), "found_date must be non-increasing")
	}
	assert.Equal(t, "umbrella 59", got[0].Description)
}

func TestSearchStorageFailure(t *testing.T) {
	repo := testutil.NewMemoryRepo()
	repo.SearchErr = errors.New("connection refused")
	_, err := NewSearchService(repo).Search(context.Background(), SearchQuery{Product: "x"})
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
}

func TestContact(t *testing.T) {
	repo := testutil.NewMemoryRepo()
	seed(t, repo, model.FoundItem{Description: "Red wallet", Category: "Wallet", ContactNo: "+911234567890"})
	svc := NewSearchService(repo)

	c, err := svc.Contact(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "+911234567890", c)

	_, err = svc.Contact(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactDBNotReady(t *testing.T) {
	repo := testutil.NewMemoryRepo()
	repo.NotReady = true
	_, err := NewSearchService(repo).Contact(context.Background(), 1)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, repository.ErrDBNotReady)
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shinyyama/reconnect/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB builds a MySQL-dialect GORM handle that never touches a server. Writes
// skip the default transaction, otherwise Create would BeginTx against a live pool.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "lf:pw@tcp(127.0.0.1:3306)/lostfound?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestSearchQueryAllFilters(t *testing.T) {
	db := dryRunDB(t)

	var items []model.FoundItem
	stmt := searchQuery(db, SearchFilter{Product: "Backpack", Category: "Bag", Location: "Pune"}).Find(&items).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "FROM `found_items`")
	assert.Contains(t, sql, "category = ?")
	assert.Contains(t, sql, "LOWER(description) LIKE ? OR LOWER(location_desc) LIKE ?")
	assert.Contains(t, sql, "LOWER(city) LIKE ? OR LOWER(location_desc) LIKE ?")
	assert.Contains(t, sql, "ORDER BY found_date DESC,item_id DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "finder_contact")
	assert.NotContains(t, sql, "contact_no")

	require.GreaterOrEqual(t, len(stmt.Vars), 5)
	assert.Equal(t, []any{"Bag", "%backpack%", "%backpack%", "%pune%", "%pune%"}, stmt.Vars[:5])
}

func TestSearchQueryCapsAtFifty(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var items []model.FoundItem
		return searchQuery(tx, SearchFilter{Product: "wallet"}).Find(&items)
	})
	assert.Contains(t, sql, "LIMIT 50")
	assert.Contains(t, sql, "'%wallet%'")
}

func TestSearchQueryOnlyCategory(t *testing.T) {
	db := dryRunDB(t)

	var items []model.FoundItem
	stmt := searchQuery(db, SearchFilter{Category: "Wallet"}).Find(&items).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "category = ?")
	assert.NotContains(t, sql, "LIKE")
	require.NotEmpty(t, stmt.Vars)
	assert.Equal(t, "Wallet", stmt.Vars[0])
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Wallet", "%wallet%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\d`, `%c:\\d%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.in), tt.in)
	}
}

func TestRepositoryNotReady(t *testing.T) {
	repo := NewFoundItemRepository(nil)
	ctx := context.Background()

	assert.False(t, repo.Ready())
	assert.True(t, errors.Is(repo.Create(ctx, &model.FoundItem{}), ErrDBNotReady))
	_, err := repo.Search(ctx, SearchFilter{Product: "x"})
	assert.ErrorIs(t, err, ErrDBNotReady)
	_, err = repo.FindContact(ctx, 1)
	assert.ErrorIs(t, err, ErrDBNotReady)

	repo.SetDB(dryRunDB(t))
	assert.True(t, repo.Ready())
}

func TestCreateCopiesContactToFinderContact(t *testing.T) {
	repo := NewFoundItemRepository(dryRunDB(t))
	item := &model.FoundItem{Description: "Red wallet", ContactNo: "+911234567890", Category: "Wallet", ImagePath: "uploads/found_images/a.jpg"}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, repo.Create(ctx, item))
	assert.Equal(t, "+911234567890", item.FinderContact)
}

func TestSearchFilterEmpty(t *testing.T) {
	assert.True(t, SearchFilter{}.Empty())
	assert.False(t, SearchFilter{Location: "Pune"}.Empty())
}

package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shinyyama/reconnect/internal/model"
	"gorm.io/gorm"
)

// MaxSearchResults caps every search; there is no offset or cursor.
const MaxSearchResults = 50

// publicColumns excludes contact_no and finder_contact.
var publicColumns = []string{
	"item_id", "description", "location_desc", "city", "category",
	"latitude", "longitude", "image_path", "found_date",
}

var ErrDBNotReady = errors.New("database not initialized")

type SearchFilter struct {
	Product  string
	Category string
	Location string
}

// Empty reports whether no criterion is set.
func (f SearchFilter) Empty() bool {
	return f.Product == "" && f.Category == "" && f.Location == ""
}

type FoundItemRepository interface {
	Create(ctx context.Context, item *model.FoundItem) error
	Search(ctx context.Context, f SearchFilter) ([]model.FoundItem, error)
	FindContact(ctx context.Context, itemID uint64) (string, error)
	Ready() bool
	SetDB(db *gorm.DB)
}

type foundItemRepository struct {
	mu sync.RWMutex
	db *gorm.DB
}

func NewFoundItemRepository(db *gorm.DB) FoundItemRepository {
	return &foundItemRepository{db: db}
}

func (r *foundItemRepository) conn() (*gorm.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	return r.db, nil
}

func (r *foundItemRepository) Create(ctx context.Context, item *model.FoundItem) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	item.FinderContact = item.ContactNo
	return db.WithContext(ctx).Create(item).Error
}

func (r *foundItemRepository) Search(ctx context.Context, f SearchFilter) ([]model.FoundItem, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var items []model.FoundItem
	if err := searchQuery(db.WithContext(ctx), f).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *foundItemRepository) FindContact(ctx context.Context, itemID uint64) (string, error) {
	db, err := r.conn()
	if err != nil {
		return "", err
	}
	var item model.FoundItem
	if err := db.WithContext(ctx).
		Select("finder_contact").
		Where("item_id = ?", itemID).
		Take(&item).Error; err != nil {
		return "", err
	}
	return item.FinderContact, nil
}

func (r *foundItemRepository) Ready() bool {
	_, err := r.conn()
	return err == nil
}

func (r *foundItemRepository) SetDB(db *gorm.DB) {
	r.mu.Lock()
	r.db = db
	r.mu.Unlock()
}

func searchQuery(db *gorm.DB, f SearchFilter) *gorm.DB {
	q := db.Model(&model.FoundItem{}).Select(publicColumns)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Product != "" {
		p := likePattern(f.Product)
		q = q.Where("(LOWER(description) LIKE ? OR LOWER(location_desc) LIKE ?)", p, p)
	}
	if f.Location != "" {
		p := likePattern(f.Location)
		q = q.Where("(LOWER(city) LIKE ? OR LOWER(location_desc) LIKE ?)", p, p)
	}
	return q.Order("found_date DESC").Order("item_id DESC").Limit(MaxSearchResults)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lower-cased substring pattern with LIKE wildcards escaped.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
}

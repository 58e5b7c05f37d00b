// Package testutil holds in-memory stand-ins for the MySQL repository, the media
// store and the event publisher.
package testutil

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shinyyama/reconnect/internal/events"
	"github.com/shinyyama/reconnect/internal/media"
	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/repository"
	"gorm.io/gorm"
)

// MemoryRepo mirrors the MySQL search semantics over a slice.
type MemoryRepo struct {
	mu        sync.Mutex
	items     []model.FoundItem
	nextID    uint64
	clock     time.Time
	CreateErr error
	SearchErr error
	NotReady  bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, clock: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)}
}

func (r *MemoryRepo) Create(_ context.Context, item *model.FoundItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NotReady {
		return repository.ErrDBNotReady
	}
	if r.CreateErr != nil {
		return r.CreateErr
	}
	item.ItemID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Minute)
	item.FoundDate = r.clock
	item.FinderContact = item.ContactNo
	r.items = append(r.items, *item)
	return nil
}

func (r *MemoryRepo) Search(_ context.Context, f repository.SearchFilter) ([]model.FoundItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NotReady {
		return nil, repository.ErrDBNotReady
	}
	if r.SearchErr != nil {
		return nil, r.SearchErr
	}
	var out []model.FoundItem
	for _, it := range r.items {
		loc := ""
		if it.LocationDesc != nil {
			loc = *it.LocationDesc
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Product != "" && !containsFold(it.Description, f.Product) && !containsFold(loc, f.Product) {
			continue
		}
		if f.Location != "" && !containsFold(it.City, f.Location) && !containsFold(loc, f.Location) {
			continue
		}
		it.ContactNo = ""
		it.FinderContact = ""
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FoundDate.Equal(out[j].FoundDate) {
			return out[i].ItemID > out[j].ItemID
		}
		return out[i].FoundDate.After(out[j].FoundDate)
	})
	if len(out) > repository.MaxSearchResults {
		out = out[:repository.MaxSearchResults]
	}
	return out, nil
}

func (r *MemoryRepo) FindContact(_ context.Context, itemID uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NotReady {
		return "", repository.ErrDBNotReady
	}
	for _, it := range r.items {
		if it.ItemID == itemID {
			return it.FinderContact, nil
		}
	}
	return "", gorm.ErrRecordNotFound
}

func (r *MemoryRepo) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.NotReady
}

func (r *MemoryRepo) SetDB(*gorm.DB) {}

// SetReady flips the simulated database availability.
func (r *MemoryRepo) SetReady(ok bool) {
	r.mu.Lock()
	r.NotReady = !ok
	r.mu.Unlock()
}

// Items returns a copy of every stored row.
func (r *MemoryRepo) Items() []model.FoundItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.FoundItem(nil), r.items...)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// MemoryStore keeps saved images in a map keyed by image path.
type MemoryStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	Prefix  string
	SaveErr error
	Deleted []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte), Prefix: "uploads/found_images"}
}

func (s *MemoryStore) Save(_ context.Context, name string, body io.Reader, _ int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	p := path.Join(s.Prefix, name)
	if _, ok := s.files[p]; ok {
		return "", media.ErrExists
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	s.files[p] = buf.Bytes()
	return p, nil
}

func (s *MemoryStore) Delete(_ context.Context, imagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, imagePath)
	delete(s.files, imagePath)
	return nil
}

// Paths lists stored image paths.
func (s *MemoryStore) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RecordingPublisher captures published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.ItemSubmitted
	Err    error
}

func (p *RecordingPublisher) PublishItemSubmitted(_ context.Context, ev events.ItemSubmitted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, ev)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// PNG is a minimal byte sequence that sniffs as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// HEIC is the ftyp box that starts an iPhone HEIC photo.
var HEIC = []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic")

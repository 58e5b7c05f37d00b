package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/reqctx"
	"github.com/shinyyama/reconnect/internal/repository"
	"gorm.io/gorm"
)

const MsgMissingCriteria = "Please provide search criteria (product, category, or location)."

type SearchQuery struct {
	Product  string
	Category string
	Location string
}

type SearchService interface {
	Search(ctx context.Context, q SearchQuery) ([]model.FoundItem, error)
	Contact(ctx context.Context, itemID uint64) (string, error)
}

type searchService struct {
	repo repository.FoundItemRepository
}

func NewSearchService(repo repository.FoundItemRepository) SearchService {
	return &searchService{repo: repo}
}

func (s *searchService) Search(ctx context.Context, q SearchQuery) ([]model.FoundItem, error) {
	f := repository.SearchFilter{
		Product:  strings.TrimSpace(q.Product),
		Category: strings.TrimSpace(q.Category),
		Location: strings.TrimSpace(q.Location),
	}
	if f.Empty() {
		return nil, invalid(MsgMissingCriteria)
	}
	items, err := s.repo.Search(ctx, f)
	if err != nil {
		log.Error().Err(err).Str("rid", reqctx.RID(ctx)).Str("stage", "search").Msg("search failed")
		return nil, &StorageError{Op: "search found items", Err: err}
	}
	if items == nil {
		items = []model.FoundItem{}
	}
	return items, nil
}

func (s *searchService) Contact(ctx context.Context, itemID uint64) (string, error) {
	contact, err := s.repo.FindContact(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		log.Error().Err(err).Str("rid", reqctx.RID(ctx)).Uint64("item_id", itemID).Str("stage", "contact").Msg("contact lookup failed")
		return "", &StorageError{Op: "find contact", Err: err}
	}
	return contact, nil
}

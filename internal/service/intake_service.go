package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/events"
	"github.com/shinyyama/reconnect/internal/media"
	"github.com/shinyyama/reconnect/internal/model"
	"github.com/shinyyama/reconnect/internal/reqctx"
	"github.com/shinyyama/reconnect/internal/repository"
)

const (
	MsgMissingDetails = "Missing required item details or image."
	MsgNotAnImage     = "Uploaded file must be an image."
	MsgItemPosted     = "Found item successfully posted!"
	MsgContactTooLong = "Contact number is too long."

	// MaxContactLen is the width of the contact_no and finder_contact columns.
	MaxContactLen = 32
	saveAttempts  = 3
)

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmitInput carries the raw form values of a found-item report.
type SubmitInput struct {
	Description  string
	LocationDesc string
	ContactNo    string
	City         string
	Category     string
	Latitude     string
	Longitude    string
	Image        *Upload
}

type SubmitResult struct {
	Item      *model.FoundItem
	ImagePath string
}

type IntakeService interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
}

type intakeService struct {
	repo  repository.FoundItemRepository
	store media.Store
	pub   events.Publisher
}

func NewIntakeService(repo repository.FoundItemRepository, store media.Store, pub events.Publisher) IntakeService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &intakeService{repo: repo, store: store, pub: pub}
}

func (s *intakeService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	rid := reqctx.RID(ctx)
	in.Description = strings.TrimSpace(in.Description)
	in.ContactNo = strings.TrimSpace(in.ContactNo)
	in.Category = strings.TrimSpace(in.Category)
	in.City = strings.TrimSpace(in.City)
	in.LocationDesc = strings.TrimSpace(in.LocationDesc)

	if in.Image == nil || in.Image.Body == nil || in.Description == "" || in.ContactNo == "" || in.Category == "" {
		return nil, invalid(MsgMissingDetails)
	}
	if utf8.RuneCountInString(in.ContactNo) > MaxContactLen {
		return nil, invalid(MsgContactTooLong)
	}
	lat, err := parseCoordinate(in.Latitude, 90)
	if err != nil {
		return nil, invalid("Invalid latitude.")
	}
	lng, err := parseCoordinate(in.Longitude, 180)
	if err != nil {
		return nil, invalid("Invalid longitude.")
	}

	body, contentType, isImage, err := media.Sniff(in.Image.Body)
	if err != nil {
		return nil, &StorageError{Op: "read upload", Err: err}
	}
	if !isImage {
		return nil, invalid(MsgNotAnImage)
	}

	imagePath, err := s.save(ctx, in.Image, body, contentType)
	if err != nil {
		log.Error().Err(err).Str("rid", rid).Str("stage", "save_image").Msg("intake failed")
		return nil, &StorageError{Op: "save image", Err: err}
	}

	item := &model.FoundItem{
		Description: in.Description,
		ContactNo:   in.ContactNo,
		City:        in.City,
		Category:    in.Category,
		Latitude:    lat,
		Longitude:   lng,
		ImagePath:   imagePath,
	}
	if in.LocationDesc != "" {
		item.LocationDesc = &in.LocationDesc
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.discard(ctx, imagePath)
		log.Error().Err(err).Str("rid", rid).Str("stage", "insert").Str("image_path", imagePath).Msg("intake failed")
		return nil, &StorageError{Op: "insert found item", Err: err}
	}

	ctx = reqctx.WithItemID(ctx, item.ItemID)
	log.Info().Str("rid", rid).Uint64("item_id", item.ItemID).Str("stage", "stored").Str("image_path", imagePath).Msg("found item posted")

	if err := s.pub.PublishItemSubmitted(ctx, events.ItemSubmitted{
		ItemID:    item.ItemID,
		Category:  item.Category,
		City:      item.City,
		ImagePath: item.ImagePath,
	}); err != nil {
		log.Warn().Err(err).Str("rid", rid).Uint64("item_id", reqctx.ItemID(ctx)).Str("stage", "publish").Msg("event not published")
	}

	return &SubmitResult{Item: item, ImagePath: imagePath}, nil
}

func (s *intakeService) save(ctx context.Context, up *Upload, body io.Reader, contentType string) (string, error) {
	var lastErr error
	for i := 0; i < saveAttempts; i++ {
		p, err := s.store.Save(ctx, media.NewName(up.Filename), body, up.Size, contentType)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, media.ErrExists) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// discard removes a stored image after a failed intake. It never fails the caller.
func (s *intakeService) discard(ctx context.Context, imagePath string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), imagePath); err != nil {
		log.Error().Err(err).Str("rid", reqctx.RID(ctx)).Str("image_path", imagePath).Msg("error cleaning up file")
	}
}

// parseCoordinate returns nil for an empty value.
func parseCoordinate(raw string, limit float64) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if v < -limit || v > limit || v != v {
		return nil, fmt.Errorf("coordinate %v out of range", v)
	}
	return &v, nil
}

package rated

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minRating = 1.0
	maxRating = 5.0
)

var (
	// ErrItemNotFound indicates the referenced rated row does not exist.
	ErrItemNotFound = errors.New("rated: item not found")
	// ErrNotOwner indicates the caller does not own the referenced row.
	ErrNotOwner = errors.New("rated: caller does not own item")
	// ErrInvalidRating indicates the rating is outside the accepted range.
	ErrInvalidRating = errors.New("rated: rating must be between 1 and 5")
	// ErrInvalidItem indicates the request is missing a required field.
	ErrInvalidItem = errors.New("rated: invalid item")
)

// ServiceConfig describes the dependencies for the rated service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service persists per-user ratings. Rating a title the user already rated
// updates the existing row rather than inserting a duplicate.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the rated service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("rated: database connection required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// List returns every rated item owned by the user.
func (s *Service) List(ctx context.Context, userID int64) ([]Item, error) {
	var items []Item
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Rate upserts the user's rating for a title, keyed on (user, title).
func (s *Service) Rate(ctx context.Context, userID int64, request ItemRequest) (Item, error) {
	if request.Rating < minRating || request.Rating > maxRating {
		return Item{}, ErrInvalidRating
	}
	if request.TitleID == 0 || strings.TrimSpace(request.Name) == "" {
		return Item{}, fmt.Errorf("%w: title id and name are required", ErrInvalidItem)
	}

	var item Item
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND title_id = ?", userID, request.TitleID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = Item{
			UserID:  userID,
			TitleID: request.TitleID,
			Name:    strings.TrimSpace(request.Name),
			Watched: true,
			Rating:  request.Rating,
		}
		if request.Watched != nil {
			item.Watched = *request.Watched
		}
		applyOptional(&item, request)
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return Item{}, err
		}
		return item, nil
	}
	if err != nil {
		return Item{}, err
	}

	item.Rating = request.Rating
	item.Watched = true
	if request.Watched != nil {
		item.Watched = *request.Watched
	}
	if name := strings.TrimSpace(request.Name); name != "" {
		item.Name = name
	}
	applyOptional(&item, request)
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update overwrites the supplied fields of a rated item the user owns.
func (s *Service) Update(ctx context.Context, userID, itemID int64, request ItemRequest) (Item, error) {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return Item{}, err
	}
	if request.Rating != 0 {
		if request.Rating < minRating || request.Rating > maxRating {
			return Item{}, ErrInvalidRating
		}
		item.Rating = request.Rating
	}
	if name := strings.TrimSpace(request.Name); name != "" {
		item.Name = name
	}
	if request.Watched != nil {
		item.Watched = *request.Watched
	}
	applyOptional(&item, request)
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes a rated item the user owns.
func (s *Service) Delete(ctx context.Context, userID, itemID int64) error {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&item).Error
}

func (s *Service) owned(ctx context.Context, userID, itemID int64) (Item, error) {
	var item Item
	err := s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Item{}, fmt.Errorf("%w: id %d", ErrItemNotFound, itemID)
	}
	if err != nil {
		return Item{}, err
	}
	if item.UserID != userID {
		s.logger.Warn("rated ownership check failed",
			zap.Int64("item_id", itemID),
			zap.Int64("owner_id", item.UserID),
			zap.Int64("caller_id", userID))
		return Item{}, fmt.Errorf("%w: id %d", ErrNotOwner, itemID)
	}
	return item, nil
}

func applyOptional(item *Item, request ItemRequest) {
	if request.PlotOverview != nil {
		item.PlotOverview = *request.PlotOverview
	}
	if request.Year != nil {
		item.Year = *request.Year
	}
	if request.Type != nil {
		item.Type = *request.Type
	}
	if request.GenreName != nil {
		item.GenreName = *request.GenreName
	}
	if request.Poster != nil {
		item.Poster = *request.Poster
	}
}

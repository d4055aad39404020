package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrItemNotFound indicates the referenced watchlist row does not exist.
	ErrItemNotFound = errors.New("watchlist: item not found")
	// ErrNotOwner indicates the caller does not own the referenced row.
	ErrNotOwner = errors.New("watchlist: caller does not own item")
	// ErrInvalidItem indicates the request is missing a required field.
	ErrInvalidItem = errors.New("watchlist: invalid item")
)

// ServiceConfig describes the dependencies for the watchlist service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service persists per-user watchlist rows with ownership checks on every
// mutation.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the watchlist service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("watchlist: database connection required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// List returns every watchlist item owned by the user.
func (s *Service) List(ctx context.Context, userID int64) ([]Item, error) {
	var items []Item
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Add saves a new item for the user.
func (s *Service) Add(ctx context.Context, userID int64, request ItemRequest) (Item, error) {
	if request.TitleID == 0 || strings.TrimSpace(request.Name) == "" {
		return Item{}, fmt.Errorf("%w: title id and name are required", ErrInvalidItem)
	}
	item := Item{
		UserID:  userID,
		TitleID: request.TitleID,
		Name:    strings.TrimSpace(request.Name),
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

// Update overwrites the supplied fields of an item the user owns.
func (s *Service) Update(ctx context.Context, userID, itemID int64, request ItemRequest) (Item, error) {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return Item{}, err
	}
	if request.TitleID != 0 {
		item.TitleID = request.TitleID
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

// Delete removes an item the user owns.
func (s *Service) Delete(ctx context.Context, userID, itemID int64) error {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&item).Error
}

// MarkWatched flips the watched flag on an item the user owns.
func (s *Service) MarkWatched(ctx context.Context, userID, itemID int64, watched bool) (Item, error) {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return Item{}, err
	}
	item.Watched = watched
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return Item{}, err
	}
	return item, nil
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
		s.logger.Warn("watchlist ownership check failed",
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

package repository

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

import (
	"context"
	"errors"
	"fmt"

	"auction-market/internal/auctionerrors"
	model "auction-market/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuctionDB defines the storage interface for the auction system
type AuctionDB interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uint) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	DeleteUser(ctx context.Context, id uint) error

	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id uint) (model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateListing(ctx context.Context, listing *model.Listing) error
	FindListing(ctx context.Context, id uint) (model.Listing, error)
	LockListing(ctx context.Context, id uint) (model.Listing, error)
	ListActiveByCategory(ctx context.Context, categoryID *uint) ([]model.Listing, error)
	CloseListing(ctx context.Context, id uint, winnerID *uint) error
	DeleteListing(ctx context.Context, id uint) error

	RecordBid(ctx context.Context, bid *model.Bid) error
	ListBidsFor(ctx context.Context, listingID uint) ([]model.Bid, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	ListCommentsFor(ctx context.Context, listingID uint) ([]model.Comment, error)

	WatchlistExists(ctx context.Context, userID, listingID uint) (bool, error)
	AddToWatchlist(ctx context.Context, userID, listingID uint) error
	RemoveFromWatchlist(ctx context.Context, userID, listingID uint) error
	ListWatchlist(ctx context.Context, userID uint) ([]model.Listing, error)

	// Atomic runs fn inside one transaction; fn must only use the store it is given.
	Atomic(ctx context.Context, fn func(store AuctionDB) error) error
}

// GormRepo implements AuctionDB on top of GORM
type GormRepo struct {
	db *gorm.DB
}

// NewGormRepo creates a new repository instance
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// Atomic runs fn in a database transaction
func (r *GormRepo) Atomic(ctx context.Context, fn func(store AuctionDB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{db: tx})
	})
}

// CreateUser inserts a new user
func (r *GormRepo) CreateUser(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrUsernameTaken)
	}
	return err
}

// GetUser returns a user by id
func (r *GormRepo) GetUser(ctx context.Context, id uint) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, notFound(err, "user %d", id)
}

// GetUserByUsername returns a user by login name
func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return user, notFound(err, "user %s", username)
}

// DeleteUser removes a user with their listings, comments and watchlist
// entries. It is refused while the user, or any of their listings, is
// referenced by a bid.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := notFound(tx.First(&user, id).Error, "user %d", id); err != nil {
			return err
		}

		ownListings := func() *gorm.DB {
			return tx.Model(&model.Listing{}).Select("id").Where("creator_id = ?", id)
		}

		var bids int64
		if err := tx.Model(&model.Bid{}).
			Where("bidder_id = ? OR listing_id IN (?)", id, ownListings()).
			Count(&bids).Error; err != nil {
			return err
		}
		if bids > 0 {
			return fmt.Errorf("delete user %d: %d bids: %w", id, bids, auctionerrors.ErrReferentialConflict)
		}

		if err := tx.Where("user_id = ? OR listing_id IN (?)", id, ownListings()).
			Delete(&model.WatchlistEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ? OR listing_id IN (?)", id, ownListings()).
			Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("creator_id = ?", id).Delete(&model.Listing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
	return stillReferenced(err, "delete user %d", id)
}

// CreateCategory inserts a category
func (r *GormRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// GetCategory returns a category by id
func (r *GormRepo) GetCategory(ctx context.Context, id uint) (model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	return category, notFound(err, "category %d", id)
}

// ListCategories returns every category ordered by name
func (r *GormRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

// CreateListing inserts a listing
func (r *GormRepo) CreateListing(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(listing).Error
}

// FindListing returns a listing by id
func (r *GormRepo) FindListing(ctx context.Context, id uint) (model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).First(&listing, id).Error
	return listing, notFound(err, "listing %d", id)
}

// LockListing reads a listing and, on Postgres, holds its row lock until the
// surrounding transaction ends.
func (r *GormRepo) LockListing(ctx context.Context, id uint) (model.Listing, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var listing model.Listing
	err := q.First(&listing, id).Error
	return listing, notFound(err, "listing %d", id)
}

// ListActiveByCategory returns active listings, optionally limited to one category
func (r *GormRepo) ListActiveByCategory(ctx context.Context, categoryID *uint) ([]model.Listing, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var listings []model.Listing
	err := q.Order("id").Find(&listings).Error
	return listings, err
}

// CloseListing marks a listing inactive and stores its winner
func (r *GormRepo) CloseListing(ctx context.Context, id uint, winnerID *uint) error {
	res := r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "winner_id": winnerID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("close listing %d: %w", id, auctionerrors.ErrNotFound)
	}
	return nil
}

// DeleteListing removes a listing with its comments and watchlist entries.
// It is refused while any bid references the listing.
func (r *GormRepo) DeleteListing(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing model.Listing
		if err := notFound(tx.First(&listing, id).Error, "listing %d", id); err != nil {
			return err
		}

		var bids int64
		if err := tx.Model(&model.Bid{}).Where("listing_id = ?", id).Count(&bids).Error; err != nil {
			return err
		}
		if bids > 0 {
			return fmt.Errorf("delete listing %d: %d bids: %w", id, bids, auctionerrors.ErrReferentialConflict)
		}

		if err := tx.Where("listing_id = ?", id).Delete(&model.WatchlistEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Listing{}, id).Error
	})
	return stillReferenced(err, "delete listing %d", id)
}

// RecordBid inserts a bid
func (r *GormRepo) RecordBid(ctx context.Context, bid *model.Bid) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(bid).Error
}

// ListBidsFor returns all bids for a listing in insertion order
func (r *GormRepo) ListBidsFor(ctx context.Context, listingID uint) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("id ASC").Find(&bids).Error
	return bids, err
}

// CreateComment inserts a comment
func (r *GormRepo) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

// ListCommentsFor returns the comments on a listing, oldest first
func (r *GormRepo) ListCommentsFor(ctx context.Context, listingID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("id ASC").Find(&comments).Error
	return comments, err
}

// WatchlistExists reports whether the user is watching the listing
func (r *GormRepo) WatchlistExists(ctx context.Context, userID, listingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WatchlistEntry{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).Error
	return count > 0, err
}

// AddToWatchlist inserts a watchlist pair
func (r *GormRepo) AddToWatchlist(ctx context.Context, userID, listingID uint) error {
	entry := model.WatchlistEntry{UserID: userID, ListingID: listingID}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&entry).Error
}

// RemoveFromWatchlist deletes a watchlist pair
func (r *GormRepo) RemoveFromWatchlist(ctx context.Context, userID, listingID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&model.WatchlistEntry{}).Error
}

// ListWatchlist returns the listings a user watches, in the order they were added
func (r *GormRepo) ListWatchlist(ctx context.Context, userID uint) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.WithContext(ctx).
		Joins("JOIN watchlist_entries ON watchlist_entries.listing_id = listings.id").
		Where("watchlist_entries.user_id = ?", userID).
		Order("watchlist_entries.created_at, listings.id").
		Find(&listings).Error
	return listings, err
}

// notFound translates gorm.ErrRecordNotFound into the domain error
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), auctionerrors.ErrNotFound)
	}
	return err
}

// stillReferenced reports a foreign key violation, e.g. a bid committed
// between the bid count and the delete, as ErrReferentialConflict.
func stillReferenced(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), auctionerrors.ErrReferentialConflict)
	}
	return err
}

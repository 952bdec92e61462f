package auction

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"auction-market/internal/auctionerrors"
	"auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/internal/validation"

	"github.com/shopspring/decimal"
)

// CategoryCache caches the category list. Implementations must tolerate
// being unavailable by reporting a miss.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]models.Category, bool)
	SetCategories(ctx context.Context, categories []models.Category)
}

// NewListing is the input for CreateListing
type NewListing struct {
	Title         string
	Description   string
	StartingValue decimal.Decimal
	ImageURL      string
	CategoryID    uint
}

// ListingDetail is a listing together with its bids, comments and current price
type ListingDetail struct {
	Listing      models.Listing   `json:"listing"`
	Bids         []models.Bid     `json:"bids"`
	Comments     []models.Comment `json:"comments"`
	CurrentValue decimal.Decimal  `json:"current_value"`
}

// AuctionService enforces the listing lifecycle: creation, bidding and closing
type AuctionService struct {
	repo       repository.AuctionDB
	categories CategoryCache
	locks      *listingLocks
}

// NewAuctionService creates a new AuctionService instance. categories may be nil.
func NewAuctionService(repo repository.AuctionDB, categories CategoryCache) *AuctionService {
	return &AuctionService{
		repo:       repo,
		categories: categories,
		locks:      newListingLocks(),
	}
}

// CreateListing validates every field and stores a new active listing.
// All field failures are returned together in an *auctionerrors.ValidationError.
func (s *AuctionService) CreateListing(ctx context.Context, in NewListing, creatorID uint) (models.Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	verr := auctionerrors.NewValidationError()
	verr.Add("title", validation.ValidateText(in.Title, validation.MaxTitleLength))
	verr.Add("description", validation.ValidateText(in.Description, validation.MaxDescriptionLength))
	verr.Add("starting_bid", validation.ValidatePrice(in.StartingValue))
	verr.Add("image_url", validateImageURL(in.ImageURL))

	if in.CategoryID == 0 {
		verr.Add("category_id", auctionerrors.ErrFieldRequired)
	} else if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		if !errors.Is(err, auctionerrors.ErrNotFound) {
			return models.Listing{}, fmt.Errorf("service: failed to check category %d: %w", in.CategoryID, err)
		}
		verr.Add("category_id", auctionerrors.ErrUnknownCategory)
	}

	if err := verr.OrNil(); err != nil {
		return models.Listing{}, fmt.Errorf("service: create listing: %w", err)
	}

	listing := models.Listing{
		Title:       in.Title,
		Description: in.Description,
		Value:       in.StartingValue,
		ImageURL:    in.ImageURL,
		Active:      true,
		CreatorID:   creatorID,
		CategoryID:  in.CategoryID,
	}
	if err := s.repo.CreateListing(ctx, &listing); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing by user %d: %w", creatorID, err)
	}
	return listing, nil
}

// PlaceBid validates and records a user's bid on a listing. The listing is
// locked and re-read inside one transaction, so concurrent bids on the same
// listing are decided one after another against committed state.
func (s *AuctionService) PlaceBid(ctx context.Context, listingID, bidderID uint, amount decimal.Decimal) (models.Bid, error) {
	unlock := s.locks.lock(listingID)
	defer unlock()

	var bid models.Bid
	err := s.repo.Atomic(ctx, func(store repository.AuctionDB) error {
		listing, err := store.LockListing(ctx, listingID)
		if err != nil {
			return err
		}
		if err := checkBidAgainstListing(listing, amount); err != nil {
			return err
		}

		bids, err := store.ListBidsFor(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load bids: %w", err)
		}
		if highest, ok := winningBid(bids); ok && !amount.GreaterThan(highest.Value) {
			return fmt.Errorf("%w - current highest bid is %s", auctionerrors.ErrBidNotHighEnough, highest.Value.StringFixed(2))
		}

		bid = models.Bid{
			Value:     amount,
			BidderID:  bidderID,
			ListingID: listingID,
		}
		return store.RecordBid(ctx, &bid)
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: bid on listing %d by user %d: %w", listingID, bidderID, err)
	}

	return bid, nil
}

// checkBidAgainstListing applies the checks that need only the listing, in order:
// open listing, valid price, at least the asking value.
func checkBidAgainstListing(listing models.Listing, amount decimal.Decimal) error {
	if !listing.Active {
		return auctionerrors.ErrListingClosed
	}
	if err := validation.ValidatePrice(amount); err != nil {
		return err
	}
	if amount.LessThan(listing.Value) {
		return fmt.Errorf("%w - asking price is %s", auctionerrors.ErrBidTooLow, listing.Value.StringFixed(2))
	}
	return nil
}

// CloseListing stops bidding on a listing and records the highest bidder as
// winner. Only the creator may close; closing a closed listing is a no-op.
func (s *AuctionService) CloseListing(ctx context.Context, listingID, requestedBy uint) (models.Listing, error) {
	unlock := s.locks.lock(listingID)
	defer unlock()

	var closed models.Listing
	err := s.repo.Atomic(ctx, func(store repository.AuctionDB) error {
		listing, err := store.LockListing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.CreatorID != requestedBy {
			return auctionerrors.ErrUnauthorized
		}
		if !listing.Active {
			closed = listing
			return nil
		}

		bids, err := store.ListBidsFor(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load bids: %w", err)
		}

		var winnerID *uint
		if highest, ok := winningBid(bids); ok {
			id := highest.BidderID
			winnerID = &id
		}
		if err := store.CloseListing(ctx, listingID, winnerID); err != nil {
			return err
		}

		listing.Active = false
		listing.WinnerID = winnerID
		closed = listing
		return nil
	})
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: close listing %d by user %d: %w", listingID, requestedBy, err)
	}
	return closed, nil
}

// AddComment validates and stores a comment on a listing
func (s *AuctionService) AddComment(ctx context.Context, listingID, authorID uint, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)

	verr := auctionerrors.NewValidationError()
	verr.Add("comment", validation.ValidateText(text, validation.MaxCommentLength))
	if err := verr.OrNil(); err != nil {
		return models.Comment{}, fmt.Errorf("service: add comment: %w", err)
	}

	if _, err := s.repo.FindListing(ctx, listingID); err != nil {
		return models.Comment{}, fmt.Errorf("service: add comment to listing %d: %w", listingID, err)
	}

	comment := models.Comment{Text: text, AuthorID: authorID, ListingID: listingID}
	if err := s.repo.CreateComment(ctx, &comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to store comment on listing %d: %w", listingID, err)
	}
	return comment, nil
}

// GetListing returns a listing with its bids, comments and current value
func (s *AuctionService) GetListing(ctx context.Context, listingID uint) (ListingDetail, error) {
	listing, err := s.repo.FindListing(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: get listing %d: %w", listingID, err)
	}

	bids, err := s.repo.ListBidsFor(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get bids for listing %d: %w", listingID, err)
	}

	comments, err := s.repo.ListCommentsFor(ctx, listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get comments for listing %d: %w", listingID, err)
	}

	return ListingDetail{
		Listing:      listing,
		Bids:         bids,
		Comments:     comments,
		CurrentValue: currentValue(listing, bids),
	}, nil
}

// CurrentValue returns max(asking value, highest bid), recomputed from the store
func (s *AuctionService) CurrentValue(ctx context.Context, listingID uint) (decimal.Decimal, error) {
	listing, err := s.repo.FindListing(ctx, listingID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service: current value of listing %d: %w", listingID, err)
	}
	bids, err := s.repo.ListBidsFor(ctx, listingID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service: failed to get bids for listing %d: %w", listingID, err)
	}
	return currentValue(listing, bids), nil
}

// ListActive returns active listings, all of them or those of one category
func (s *AuctionService) ListActive(ctx context.Context, categoryID *uint) ([]models.Listing, error) {
	if categoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *categoryID); err != nil {
			return nil, fmt.Errorf("service: list listings of category %d: %w", *categoryID, err)
		}
	}

	listings, err := s.repo.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active listings: %w", err)
	}
	return listings, nil
}

// ListCategories returns all categories, served from the cache when possible
func (s *AuctionService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s.categories != nil {
		if cached, ok := s.categories.GetCategories(ctx); ok {
			return cached, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}

	if s.categories != nil {
		s.categories.SetCategories(ctx, categories)
	}
	return categories, nil
}

// DeleteListing removes a listing owned by requestedBy. Listings with bids are protected.
func (s *AuctionService) DeleteListing(ctx context.Context, listingID, requestedBy uint) error {
	unlock := s.locks.lock(listingID)
	defer unlock()

	listing, err := s.repo.FindListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("service: delete listing %d: %w", listingID, err)
	}
	if listing.CreatorID != requestedBy {
		return fmt.Errorf("service: delete listing %d by user %d: %w", listingID, requestedBy, auctionerrors.ErrUnauthorized)
	}
	if err := s.repo.DeleteListing(ctx, listingID); err != nil {
		return fmt.Errorf("service: delete listing %d: %w", listingID, err)
	}
	return nil
}

// winningBid returns the highest bid; ties go to the earliest one
func winningBid(bids []models.Bid) (models.Bid, bool) {
	if len(bids) == 0 {
		return models.Bid{}, false
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Value.GreaterThan(winning.Value) || (b.Value.Equal(winning.Value) && b.ID < winning.ID) {
			winning = b
		}
	}
	return winning, true
}

func currentValue(listing models.Listing, bids []models.Bid) decimal.Decimal {
	if highest, ok := winningBid(bids); ok && highest.Value.GreaterThan(listing.Value) {
		return highest.Value
	}
	return listing.Value
}

func validateImageURL(raw string) error {
	if raw == "" {
		return nil
	}
	if err := validation.ValidateLength(raw, validation.MaxImageURLLength); err != nil {
		return err
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return auctionerrors.ErrInvalidURL
	}
	return nil
}

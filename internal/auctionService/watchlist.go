package auction

import (
	"context"
	"fmt"

	"auction-market/internal/models"
	"auction-market/internal/repository"
)

// ToggleWatch adds the listing to the user's watchlist, or removes it when it
// is already there. added reports the resulting membership.
func (s *AuctionService) ToggleWatch(ctx context.Context, userID, listingID uint) (bool, error) {
	unlock := s.locks.lock(listingID)
	defer unlock()

	var added bool
	err := s.repo.Atomic(ctx, func(store repository.AuctionDB) error {
		if _, err := store.LockListing(ctx, listingID); err != nil {
			return err
		}

		exists, err := store.WatchlistExists(ctx, userID, listingID)
		if err != nil {
			return err
		}
		if exists {
			added = false
			return store.RemoveFromWatchlist(ctx, userID, listingID)
		}
		added = true
		return store.AddToWatchlist(ctx, userID, listingID)
	})
	if err != nil {
		return false, fmt.Errorf("service: toggle watch of listing %d for user %d: %w", listingID, userID, err)
	}
	return added, nil
}

// ListWatchlist returns the listings a user is watching
func (s *AuctionService) ListWatchlist(ctx context.Context, userID uint) ([]models.Listing, error) {
	listings, err := s.repo.ListWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %d: %w", userID, err)
	}
	return listings, nil
}

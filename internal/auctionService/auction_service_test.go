package auction

import (
	"context"
	"errors"
	"testing"

	"auction-market/internal/auctionerrors"
	"auction-market/internal/models"
	"auction-market/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// atomicPassThrough makes the mock run transactional callbacks against itself
func atomicPassThrough(mockRepo *repository.MockAuctionDB) {
	mockRepo.EXPECT().Atomic(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(repository.AuctionDB) error) error {
			return fn(mockRepo)
		}).AnyTimes()
}

// Tests PlaceBid
func TestAuctionService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewAuctionService(mockRepo, nil)
	atomicPassThrough(mockRepo)

	open := models.Listing{ID: 1, Value: money("90.00"), Active: true, CreatorID: 9}
	closed := models.Listing{ID: 1, Value: money("90.00"), Active: false, CreatorID: 9}

	// Table-driven test cases
	tests := []struct {
		name          string
		amount        string
		mockSetup     func()
		expectError   bool
		expectedError error
	}{
		{
			name:   "valid_first_bid",
			amount: "90.00",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
				mockRepo.EXPECT().ListBidsFor(gomock.Any(), uint(1)).Return(nil, nil)
				mockRepo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "valid_higher_bid",
			amount: "100.01",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
				mockRepo.EXPECT().ListBidsFor(gomock.Any(), uint(1)).Return([]models.Bid{{ID: 1, Value: money("100.00")}}, nil)
				mockRepo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "listing_closed_checked_first",
			amount: "-5",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(closed, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrListingClosed,
		},
		{
			name:   "listing_closed_high_amount",
			amount: "1000000",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(closed, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrListingClosed,
		},
		{
			name:   "zero_amount",
			amount: "0",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidPrice,
		},
		{
			name:   "huge_negative_exponent",
			amount: "1e-20000000",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidPrice,
		},
		{
			name:   "huge_positive_exponent",
			amount: "1e20000000",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidPrice,
		},
		{
			name:   "negative_amount",
			amount: "-50",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrInvalidPrice,
		},
		{
			name:   "below_asking_value",
			amount: "89.99",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidTooLow,
		},
		{
			name:   "equal_to_current_max",
			amount: "100.00",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
				mockRepo.EXPECT().ListBidsFor(gomock.Any(), uint(1)).Return([]models.Bid{{ID: 1, Value: money("100.00")}}, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidNotHighEnough,
		},
		{
			name:   "below_current_max",
			amount: "95.00",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
				mockRepo.EXPECT().ListBidsFor(gomock.Any(), uint(1)).Return([]models.Bid{{ID: 1, Value: money("100.00")}}, nil)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrBidNotHighEnough,
		},
		{
			name:   "listing_not_found",
			amount: "100",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(models.Listing{}, auctionerrors.ErrNotFound)
			},
			expectError:   true,
			expectedError: auctionerrors.ErrNotFound,
		},
		{
			name:   "repo_fails",
			amount: "120",
			mockSetup: func() {
				mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(open, nil)
				mockRepo.EXPECT().ListBidsFor(gomock.Any(), uint(1)).Return(nil, nil)
				mockRepo.EXPECT().RecordBid(gomock.Any(), gomock.Any()).Return(errors.New("repo write failed"))
			},
			expectError:   true,
			expectedError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			bid, err := service.PlaceBid(context.Background(), 1, 2, money(tt.amount))
			if tt.expectError {
				require.Error(t, err)
				if tt.expectedError != nil {
					require.ErrorIs(t, err, tt.expectedError)
				}
				require.Equal(t, models.Bid{}, bid)
				return
			}

			require.NoError(t, err)
			require.Equal(t, uint(1), bid.ListingID)
			require.Equal(t, uint(2), bid.BidderID)
			require.True(t, bid.Value.Equal(money(tt.amount)))
		})
	}
}

// Tests CreateListing collects every field error
func TestAuctionService_CreateListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewAuctionService(mockRepo, nil)

	t.Run("all_fields_invalid", func(t *testing.T) {
		mockRepo.EXPECT().GetCategory(gomock.Any(), uint(5)).Return(models.Category{}, auctionerrors.ErrNotFound)

		_, err := service.CreateListing(context.Background(), NewListing{
			Title:         "Fuck the pain away",
			Description:   "You can not sneak 5h1t is this text",
			StartingValue: money("-10"),
			ImageURL:      "not a url",
			CategoryID:    5,
		}, 1)

		var verr *auctionerrors.ValidationError
		require.ErrorAs(t, err, &verr)
		require.ErrorIs(t, verr.Fields["title"], auctionerrors.ErrProhibitedContent)
		require.ErrorIs(t, verr.Fields["description"], auctionerrors.ErrProhibitedContent)
		require.ErrorIs(t, verr.Fields["starting_bid"], auctionerrors.ErrInvalidPrice)
		require.ErrorIs(t, verr.Fields["image_url"], auctionerrors.ErrInvalidURL)
		require.ErrorIs(t, verr.Fields["category_id"], auctionerrors.ErrUnknownCategory)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidPrice)
	})

	t.Run("zero_price_only", func(t *testing.T) {
		mockRepo.EXPECT().GetCategory(gomock.Any(), uint(1)).Return(models.Category{ID: 1}, nil)

		_, err := service.CreateListing(context.Background(), NewListing{
			Title:         "Valid Title",
			Description:   "Valid Description",
			StartingValue: money("0"),
			CategoryID:    1,
		}, 1)

		var verr *auctionerrors.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidPrice)
	})

	t.Run("valid", func(t *testing.T) {
		mockRepo.EXPECT().GetCategory(gomock.Any(), uint(1)).Return(models.Category{ID: 1}, nil)
		mockRepo.EXPECT().CreateListing(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, l *models.Listing) error {
				l.ID = 10
				return nil
			})

		listing, err := service.CreateListing(context.Background(), NewListing{
			Title:         "  Valid Title ",
			Description:   "Valid Description",
			StartingValue: money("100.00"),
			ImageURL:      "https://example.com/a.png",
			CategoryID:    1,
		}, 3)
		require.NoError(t, err)
		require.Equal(t, uint(10), listing.ID)
		require.Equal(t, "Valid Title", listing.Title)
		require.True(t, listing.Active)
		require.Nil(t, listing.WinnerID)
		require.Equal(t, uint(3), listing.CreatorID)
	})

	t.Run("category_lookup_fails", func(t *testing.T) {
		mockRepo.EXPECT().GetCategory(gomock.Any(), uint(1)).Return(models.Category{}, errors.New("db down"))

		_, err := service.CreateListing(context.Background(), NewListing{
			Title:         "Valid Title",
			Description:   "Valid Description",
			StartingValue: money("1"),
			CategoryID:    1,
		}, 3)
		require.Error(t, err)
		var verr *auctionerrors.ValidationError
		require.False(t, errors.As(err, &verr))
	})
}

// Tests CloseListing authorization and idempotency
func TestAuctionService_CloseListing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewAuctionService(mockRepo, nil)
	atomicPassThrough(mockRepo)

	t.Run("not_creator", func(t *testing.T) {
		mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(models.Listing{ID: 1, Active: true, CreatorID: 9}, nil)

		_, err := service.CloseListing(context.Background(), 1, 2)
		require.ErrorIs(t, err, auctionerrors.ErrUnauthorized)
	})

	t.Run("already_closed_is_noop", func(t *testing.T) {
		winner := uint(4)
		mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).
			Return(models.Listing{ID: 1, Active: false, CreatorID: 9, WinnerID: &winner}, nil)

		listing, err := service.CloseListing(context.Background(), 1, 9)
		require.NoError(t, err)
		require.False(t, listing.Active)
		require.Equal(t, uint(4), *listing.WinnerID)
	})

	t.Run("picks_highest_bidder", func(t *testing.T) {
		mockRepo.EXPECT().LockListing(gomock.Any(), uint(1)).Return(models.Listing{ID: 1, Active: true, CreatorID: 9, Value: money("10")}, nil)
		mockRepo.EXPECT().ListBidsFor(gomock.Any(), uint(1)).Return([]models.Bid{
			{ID: 1, BidderID: 11, Value: money("50")},
			{ID: 2, BidderID: 12, Value: money("75")},
			{ID: 3, BidderID: 13, Value: money("60")},
		}, nil)
		mockRepo.EXPECT().CloseListing(gomock.Any(), uint(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uint, winnerID *uint) error {
				require.NotNil(t, winnerID)
				require.Equal(t, uint(12), *winnerID)
				return nil
			})

		listing, err := service.CloseListing(context.Background(), 1, 9)
		require.NoError(t, err)
		require.False(t, listing.Active)
		require.Equal(t, uint(12), *listing.WinnerID)
	})
}

// Tests ListCategories uses the cache
func TestAuctionService_ListCategories(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	cache := &memoryCategoryCache{}
	service := NewAuctionService(mockRepo, cache)

	want := []models.Category{{ID: 1, Name: "Home"}}
	mockRepo.EXPECT().ListCategories(gomock.Any()).Return(want, nil).Times(1)

	for i := 0; i < 3; i++ {
		got, err := service.ListCategories(context.Background())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

// Tests winningBid tie-breaking
func TestWinningBid(t *testing.T) {
	_, ok := winningBid(nil)
	require.False(t, ok)

	bids := []models.Bid{
		{ID: 3, BidderID: 30, Value: money("80")},
		{ID: 1, BidderID: 10, Value: money("80")},
		{ID: 2, BidderID: 20, Value: money("70")},
	}
	w, ok := winningBid(bids)
	require.True(t, ok)
	require.Equal(t, uint(10), w.BidderID, "earliest of equal bids wins")
}

type memoryCategoryCache struct {
	categories []models.Category
	set        bool
}

func (c *memoryCategoryCache) GetCategories(context.Context) ([]models.Category, bool) {
	return c.categories, c.set
}

func (c *memoryCategoryCache) SetCategories(_ context.Context, categories []models.Category) {
	c.categories = categories
	c.set = true
}

package helpers

import (
	"time"

	auction "auction-market/internal/auctionService"
	model "auction-market/internal/models"

	"github.com/shopspring/decimal"
)

// Request DTOs. Money fields accept either a JSON number or a string.
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateListingRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StartingBid *decimal.Decimal `json:"starting_bid"`
	ImageURL    string           `json:"image_url"`
	CategoryID  uint             `json:"category_id"`
}

type PlaceBidRequest struct {
	Bid *decimal.Decimal `json:"bid" binding:"required"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

// Response DTOs
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ListingResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Value       string `json:"value"`
	ImageURL    string `json:"image_url,omitempty"`
	Active      bool   `json:"active"`
	CreatorID   uint   `json:"creator_id"`
	CategoryID  uint   `json:"category_id"`
	WinnerID    *uint  `json:"winner_id"`
	CreatedAt   string `json:"created_at"`
}

type BidResponse struct {
	ID        uint   `json:"id"`
	ListingID uint   `json:"listing_id"`
	BidderID  uint   `json:"bidder_id"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
}

type CommentResponse struct {
	ID        uint   `json:"id"`
	ListingID uint   `json:"listing_id"`
	AuthorID  uint   `json:"author_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type ListingDetailResponse struct {
	Listing      ListingResponse   `json:"listing"`
	CurrentValue string            `json:"current_value"`
	Bids         []BidResponse     `json:"bids"`
	Comments     []CommentResponse `json:"comments"`
}

// WatchToggleResponse is returned bare, without the usual envelope
type WatchToggleResponse struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func NewListingResponse(l model.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Value:       l.Value.StringFixed(2),
		ImageURL:    l.ImageURL,
		Active:      l.Active,
		CreatorID:   l.CreatorID,
		CategoryID:  l.CategoryID,
		WinnerID:    l.WinnerID,
		CreatedAt:   formatTime(l.CreatedAt),
	}
}

func NewListingResponses(listings []model.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, NewListingResponse(l))
	}
	return out
}

func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		ID:        b.ID,
		ListingID: b.ListingID,
		BidderID:  b.BidderID,
		Value:     b.Value.StringFixed(2),
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func NewCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		ListingID: c.ListingID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: formatTime(c.CreatedAt),
	}
}

func NewListingDetailResponse(d auction.ListingDetail) ListingDetailResponse {
	resp := ListingDetailResponse{
		Listing:      NewListingResponse(d.Listing),
		CurrentValue: d.CurrentValue.StringFixed(2),
		Bids:         make([]BidResponse, 0, len(d.Bids)),
		Comments:     make([]CommentResponse, 0, len(d.Comments)),
	}
	for _, b := range d.Bids {
		resp.Bids = append(resp.Bids, NewBidResponse(b))
	}
	for _, c := range d.Comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(c))
	}
	return resp
}

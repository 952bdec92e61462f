package handler

import (
	"context"
	"net/http"
	"strconv"

	auction "auction-market/internal/auctionService"
	"auction-market/internal/metrics"
	model "auction-market/internal/models"
	"auction-market/services/auction/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_handler.go -package=handler

type AuctionServiceInterface interface {
	CreateListing(ctx context.Context, in auction.NewListing, creatorID uint) (model.Listing, error)
	PlaceBid(ctx context.Context, listingID, bidderID uint, amount decimal.Decimal) (model.Bid, error)
	CloseListing(ctx context.Context, listingID, requestedBy uint) (model.Listing, error)
	DeleteListing(ctx context.Context, listingID, requestedBy uint) error
	AddComment(ctx context.Context, listingID, authorID uint, text string) (model.Comment, error)
	GetListing(ctx context.Context, listingID uint) (auction.ListingDetail, error)
	ListActive(ctx context.Context, categoryID *uint) ([]model.Listing, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ToggleWatch(ctx context.Context, userID, listingID uint) (bool, error)
	ListWatchlist(ctx context.Context, userID uint) ([]model.Listing, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListActiveHandler handles GET /listings
func (h *AuctionHandler) ListActiveHandler(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			helpers.HandleBindError(c, "ListActiveHandler", err)
			return
		}
		cid := uint(id)
		categoryID = &cid
	}
	h.listActive(c, "ListActiveHandler", categoryID)
}

// ListByCategoryHandler handles GET /categories/:category_id/listings
func (h *AuctionHandler) ListByCategoryHandler(c *gin.Context) {
	categoryID, ok := helpers.ParseID(c, "category_id")
	if !ok {
		return
	}
	h.listActive(c, "ListByCategoryHandler", &categoryID)
}

func (h *AuctionHandler) listActive(c *gin.Context, handlerName string, categoryID *uint) {
	listings, err := h.service.ListActive(c.Request.Context(), categoryID)
	if err != nil {
		helpers.RespondError(c, handlerName, "", err, map[string]any{"category_id": categoryID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponses(listings), "listings retrieved successfully")
	helpers.LogSuccess(handlerName, "listings retrieved successfully", map[string]any{
		"category_id": categoryID,
		"count":       len(listings),
	})
}

// ListCategoriesHandler handles GET /categories
func (h *AuctionHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		helpers.RespondError(c, "ListCategoriesHandler", "", err, nil)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// GetListingHandler handles GET /listings/:listing_id
func (h *AuctionHandler) GetListingHandler(c *gin.Context) {
	listingID, ok := helpers.ParseID(c, "listing_id")
	if !ok {
		return
	}

	detail, err := h.service.GetListing(c.Request.Context(), listingID)
	if err != nil {
		helpers.RespondError(c, "GetListingHandler", "", err, map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingDetailResponse(detail), "listing retrieved successfully")
}

// CreateListingHandler handles POST /listings
func (h *AuctionHandler) CreateListingHandler(c *gin.Context) {
	userID, _ := helpers.CurrentUserID(c)

	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	in := auction.NewListing{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if req.StartingBid != nil {
		in.StartingValue = *req.StartingBid
	}

	listing, err := h.service.CreateListing(c.Request.Context(), in, userID)
	if err != nil {
		helpers.RespondError(c, "CreateListingHandler", "", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewListingResponse(listing), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": listing.ID,
		"user_id":    userID,
		"value":      listing.Value.StringFixed(2),
	})
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	listingID, ok := helpers.ParseID(c, "listing_id")
	if !ok {
		return
	}
	userID, _ := helpers.CurrentUserID(c)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), listingID, userID, *req.Bid)
	metrics.ObserveBid(err)
	if err != nil {
		helpers.RespondError(c, "PlaceBidHandler", "bid", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"amount":     req.Bid.String(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"listing_id": listingID,
		"user_id":    userID,
		"amount":     bid.Value.StringFixed(2),
	})
}

// CloseListingHandler handles POST /listings/:listing_id/close
func (h *AuctionHandler) CloseListingHandler(c *gin.Context) {
	listingID, ok := helpers.ParseID(c, "listing_id")
	if !ok {
		return
	}
	userID, _ := helpers.CurrentUserID(c)

	listing, err := h.service.CloseListing(c.Request.Context(), listingID, userID)
	if err != nil {
		helpers.RespondError(c, "CloseListingHandler", "", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}
	metrics.ObserveClose(listing.WinnerID != nil)

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponse(listing), "listing closed successfully")
	helpers.LogSuccess("CloseListingHandler", "listing closed successfully", map[string]any{
		"listing_id": listingID,
		"winner_id":  listing.WinnerID,
	})
}

// DeleteListingHandler handles DELETE /listings/:listing_id
func (h *AuctionHandler) DeleteListingHandler(c *gin.Context) {
	listingID, ok := helpers.ParseID(c, "listing_id")
	if !ok {
		return
	}
	userID, _ := helpers.CurrentUserID(c)

	if err := h.service.DeleteListing(c.Request.Context(), listingID, userID); err != nil {
		helpers.RespondError(c, "DeleteListingHandler", "", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"id": listingID}, "listing deleted successfully")
	helpers.LogSuccess("DeleteListingHandler", "listing deleted successfully", map[string]any{"listing_id": listingID})
}

// AddCommentHandler handles POST /listings/:listing_id/comments
func (h *AuctionHandler) AddCommentHandler(c *gin.Context) {
	listingID, ok := helpers.ParseID(c, "listing_id")
	if !ok {
		return
	}
	userID, _ := helpers.CurrentUserID(c)

	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddCommentHandler", err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), listingID, userID, req.Comment)
	if err != nil {
		helpers.RespondError(c, "AddCommentHandler", "comment", err, map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewCommentResponse(comment), "comment added successfully")
	helpers.LogSuccess("AddCommentHandler", "comment added successfully", map[string]any{
		"comment_id": comment.ID,
		"listing_id": listingID,
	})
}

// ToggleWatchHandler handles POST /watchlist/:listing_id
func (h *AuctionHandler) ToggleWatchHandler(c *gin.Context) {
	listingID, ok := helpers.ParseID(c, "listing_id")
	if !ok {
		return
	}
	userID, _ := helpers.CurrentUserID(c)

	added, err := h.service.ToggleWatch(c.Request.Context(), userID, listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		c.JSON(status, helpers.WatchToggleResponse{Success: false, Message: message})
		utils.Warn("ToggleWatchHandler: toggle failed", map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.WatchToggleResponse{Success: true, Type: "ADD", Message: "Added to watchlist"}
	if !added {
		resp = helpers.WatchToggleResponse{Success: true, Type: "REMOVE", Message: "Removed from watchlist"}
	}
	c.JSON(http.StatusOK, resp)
	helpers.LogSuccess("ToggleWatchHandler", "watchlist updated", map[string]any{
		"listing_id": listingID,
		"user_id":    userID,
		"type":       resp.Type,
	})
}

// ListWatchlistHandler handles GET /watchlist
func (h *AuctionHandler) ListWatchlistHandler(c *gin.Context) {
	userID, _ := helpers.CurrentUserID(c)

	listings, err := h.service.ListWatchlist(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "ListWatchlistHandler", "", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewListingResponses(listings), "watchlist retrieved successfully")
}

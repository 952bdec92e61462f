package handler

import (
	"context"
	"net/http"

	auction "auction-market/internal/auctionService"
	model "auction-market/internal/models"
	"auction-market/services/auction/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=account_handler.go -destination=mock_account_handler.go -package=handler

type AccountServiceInterface interface {
	Register(ctx context.Context, in auction.Registration) (model.User, error)
	Login(ctx context.Context, username, password string) (string, model.User, error)
	Authenticate(ctx context.Context, token string) (model.User, error)
	DeleteUser(ctx context.Context, userID uint) error
}

type AccountHandler struct {
	service AccountServiceInterface
}

func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterHandler handles POST /register
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), auction.Registration{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", "username", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewUserResponse(user), "user registered successfully")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{"user_id": user.ID})
}

// LoginHandler handles POST /login
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", "", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.LoginResponse{
		Token: token,
		User:  helpers.NewUserResponse(user),
	}, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"user_id": user.ID})
}

// DeleteMeHandler handles DELETE /users/me
func (h *AccountHandler) DeleteMeHandler(c *gin.Context) {
	userID, _ := helpers.CurrentUserID(c)

	if err := h.service.DeleteUser(c.Request.Context(), userID); err != nil {
		helpers.RespondError(c, "DeleteMeHandler", "", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"id": userID}, "user deleted successfully")
	helpers.LogSuccess("DeleteMeHandler", "user deleted successfully", map[string]any{"user_id": userID})
}

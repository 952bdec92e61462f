package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"auction-market/internal/auctionerrors"
	auction "auction-market/internal/auctionService"
	model "auction-market/internal/models"
	"auction-market/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// Test RegisterHandler
func TestRegisterHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAccountServiceInterface(ctrl)
	handler := NewAccountHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", handler.RegisterHandler)

	now := time.Now().UTC()
	valid := helpers.RegisterRequest{
		Username:     "alice",
		Email:        "alice@example.com",
		Password:     "pw",
		Confirmation: "pw",
	}

	tests := []struct {
		name           string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		expectedFields map[string]any
	}{
		{
			name:        "success",
			requestBody: valid,
			mockSetup: func() {
				mockService.EXPECT().
					Register(gomock.Any(), auction.Registration{
						Username:     "alice",
						Email:        "alice@example.com",
						Password:     "pw",
						Confirmation: "pw",
					}).
					Return(model.User{ID: 1, Username: "alice", Email: "alice@example.com", CreatedAt: now}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "user registered successfully",
		},
		{
			name:           "missing_password",
			requestBody:    helpers.RegisterRequest{Username: "alice"},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name: "bad_email",
			requestBody: helpers.RegisterRequest{
				Username: "alice", Email: "nope", Password: "pw", Confirmation: "pw",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "username_taken",
			requestBody: valid,
			mockSetup: func() {
				mockService.EXPECT().
					Register(gomock.Any(), gomock.Any()).
					Return(model.User{}, fmt.Errorf("service: register alice: %w", auctionerrors.ErrUsernameTaken))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "username already taken",
			expectedFields: map[string]any{"username": auctionerrors.ErrUsernameTaken.Error()},
		},
		{
			name:        "password_mismatch",
			requestBody: valid,
			mockSetup: func() {
				verr := auctionerrors.NewValidationError()
				verr.Add("confirmation", auctionerrors.ErrPasswordMismatch)
				mockService.EXPECT().
					Register(gomock.Any(), gomock.Any()).
					Return(model.User{}, fmt.Errorf("service: register: %w", verr))
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "validation failed",
			expectedFields: map[string]any{"confirmation": auctionerrors.ErrPasswordMismatch.Error()},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			w, resp := serve(t, router, http.MethodPost, "/register", tc.requestBody)

			require.Equal(t, tc.expectedStatus, w.Code)
			require.Contains(t, resp["message"], tc.expectedMsg)
			if tc.expectedFields != nil {
				require.Equal(t, tc.expectedFields, resp["fields"])
			}
			if w.Code == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, "alice", data["username"])
				require.NotContains(t, data, "password_hash")
			}
		})
	}
}

// Test LoginHandler
func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAccountServiceInterface(ctrl)
	handler := NewAccountHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", handler.LoginHandler)

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), "alice", "pw").
			Return("signed-token", model.User{ID: 1, Username: "alice"}, nil)

		w, resp := serve(t, router, http.MethodPost, "/login", helpers.LoginRequest{Username: "alice", Password: "pw"})
		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		require.Equal(t, "signed-token", data["token"])
	})

	t.Run("wrong_password", func(t *testing.T) {
		mockService.EXPECT().
			Login(gomock.Any(), "alice", "bad").
			Return("", model.User{}, fmt.Errorf("service: login alice: %w", auctionerrors.ErrInvalidCredentials))

		w, resp := serve(t, router, http.MethodPost, "/login", helpers.LoginRequest{Username: "alice", Password: "bad"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "invalid credentials", resp["message"])
	})
}

// Test DeleteMeHandler
func TestDeleteMeHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAccountServiceInterface(ctrl)
	handler := NewAccountHandler(mockService)

	router := newTestRouter()
	router.DELETE("/users/me", handler.DeleteMeHandler)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "deleted", expectedStatus: http.StatusOK},
		{name: "has_bids", err: auctionerrors.ErrReferentialConflict, expectedStatus: http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockService.EXPECT().DeleteUser(gomock.Any(), testUserID).Return(tc.err)

			w, _ := serve(t, router, http.MethodDelete, "/users/me", nil)
			require.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

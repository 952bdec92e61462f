package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-market/internal/auth"
	auction "auction-market/internal/auctionService"
	"auction-market/internal/cache"
	"auction-market/internal/database"
	model "auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/internal/server"
	"auction-market/internal/testutil"
	"auction-market/services/auction/helpers"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestApp is a fully wired router over an in-memory sqlite store and a fake redis.
type TestApp struct {
	Router     *gin.Engine
	DB         *gorm.DB
	Categories []model.Category
}

// SetupTestApp initializes the router with seeded categories for integration testing.
func SetupTestApp(t *testing.T) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewSQLiteDB(t)
	require.NoError(t, database.SeedCategories(context.Background(), db, []string{"Fashion", "Toys", "Home"}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewGormRepo(db)
	tokens := auth.NewTokenManager("integration-secret", time.Hour)
	auctionSvc := auction.NewAuctionService(repo, cache.NewCategoryCache(client, time.Minute))
	accountSvc := auction.NewAccountService(repo, tokens)

	var categories []model.Category
	require.NoError(t, db.Order("id").Find(&categories).Error)

	return &TestApp{
		Router:     server.SetupRouter(auctionSvc, accountSvc),
		DB:         db,
		Categories: categories,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response.
// A non-empty token is sent as a bearer credential.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// Data returns the envelope payload of a successful response.
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no object payload: %v", resp)
	return data
}

// RegisterAndLogin creates an account over HTTP and returns its id and bearer token.
func (a *TestApp) RegisterAndLogin(t *testing.T, username string) (uint, string) {
	t.Helper()

	_, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/register", "", helpers.RegisterRequest{
		Username:     username,
		Email:        username + "@example.com",
		Password:     "pw-" + username,
		Confirmation: "pw-" + username,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/login", "", helpers.LoginRequest{
		Username: username,
		Password: "pw-" + username,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := Data(t, resp)
	user := data["user"].(map[string]any)
	return uint(user["id"].(float64)), data["token"].(string)
}

// CreateListing posts a listing and returns its id.
func (a *TestApp) CreateListing(t *testing.T, token, title, startingBid string) uint {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, a.Router, http.MethodPost, "/listings", token, map[string]any{
		"title":        title,
		"description":  title + " in good condition",
		"starting_bid": startingBid,
		"category_id":  a.Categories[0].ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(Data(t, resp)["id"].(float64))
}

func listingPath(id uint, suffix string) string {
	return fmt.Sprintf("/listings/%d%s", id, suffix)
}

// ExecuteRaw executes a request whose response is not a JSON envelope.
func ExecuteRaw(t *testing.T, app *TestApp, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(method, url, nil))
	return w
}

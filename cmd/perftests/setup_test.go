package perftests

import (
	"fmt"
	"testing"

	auction "auction-market/internal/auctionService"
	model "auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/internal/testutil"
)

// fixture is a service over a fresh sqlite store with users and open listings
type fixture struct {
	svc      *auction.AuctionService
	users    []model.User
	listings []model.Listing
}

func setupFixture(b *testing.B, numUsers, numListings int, startingValue string) fixture {
	b.Helper()

	db := testutil.NewSQLiteDB(b)
	category := testutil.CreateCategory(b, db, "Benchmarks")

	f := fixture{svc: auction.NewAuctionService(repository.NewGormRepo(db), nil)}
	for i := 0; i < numUsers; i++ {
		f.users = append(f.users, testutil.CreateUser(b, db, fmt.Sprintf("user_%d", i)))
	}
	for i := 0; i < numListings; i++ {
		creator := f.users[i%len(f.users)]
		f.listings = append(f.listings, testutil.CreateListing(b, db, creator, category, fmt.Sprintf("listing_%d", i), startingValue))
	}
	return f
}

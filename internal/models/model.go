package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a participant in the auction
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category groups listings; rows are seeded by operators
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	ImageURL string `gorm:"size:512" json:"image_url,omitempty"`
}

// Listing represents an item offered for auction by its creator
type Listing struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:100;not null" json:"title"`
	Description string          `gorm:"size:1000;not null" json:"description"`
	Value       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	ImageURL    string          `gorm:"size:512" json:"image_url,omitempty"`
	Active      bool            `gorm:"not null;default:true;index" json:"active"`
	CreatorID   uint            `gorm:"not null;index" json:"creator_id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	WinnerID    *uint           `json:"winner_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`

	Creator  User     `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	Winner   *User    `gorm:"foreignKey:WinnerID;constraint:OnDelete:SET NULL" json:"-"`
}

// Bid represents a user's bid on a listing. IDs increase in insertion order.
type Bid struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Value     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	BidderID  uint            `gorm:"not null;index" json:"bidder_id"`
	ListingID uint            `gorm:"not null;index" json:"listing_id"`
	CreatedAt time.Time       `json:"created_at"`

	Bidder  User    `gorm:"foreignKey:BidderID;constraint:OnDelete:RESTRICT" json:"-"`
	Listing Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:RESTRICT" json:"-"`
}

// Comment is free text left by a user on a listing
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:512;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`

	Author  User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Listing Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
}

// WatchlistEntry marks that a user is watching a listing
type WatchlistEntry struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ListingID uint      `gorm:"primaryKey" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`

	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Listing Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the join table name short
func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// All lists every model in dependency order for migrations
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Listing{},
		&Bid{},
		&Comment{},
		&WatchlistEntry{},
	}
}

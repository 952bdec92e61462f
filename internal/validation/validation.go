// Package validation holds the field rules applied before any listing, bid or
// comment is persisted.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"auction-market/internal/auctionerrors"

	"github.com/shopspring/decimal"
)

// Field limits shared with the HTTP forms.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxCommentLength     = 512
	MaxImageURLLength    = 512
	MaxUsernameLength    = 150

	// money is stored as numeric(12,2)
	PriceDecimalPlaces = 2
	PriceMaxDigits     = 12
)

// maxPriceScale bounds how many fraction digits, trailing zeros included,
// an amount may carry before it is rejected outright.
const maxPriceScale = 20

var maxPriceExclusive = decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)

// ValidatePrice fails with ErrInvalidPrice for non-positive amounts and for
// amounts that do not fit numeric(12,2).
func ValidatePrice(value decimal.Decimal) error {
	if value.Sign() <= 0 {
		return auctionerrors.ErrInvalidPrice
	}
	// bound exponent and magnitude before any comparison rescales the value
	if value.Exponent() < -maxPriceScale {
		return fmt.Errorf("%w: at most %d decimal places", auctionerrors.ErrInvalidPrice, PriceDecimalPlaces)
	}
	if value.NumDigits()+int(value.Exponent()) > PriceMaxDigits-PriceDecimalPlaces {
		return fmt.Errorf("%w: at most %d digits", auctionerrors.ErrInvalidPrice, PriceMaxDigits)
	}
	if !value.Equal(value.Truncate(PriceDecimalPlaces)) {
		return fmt.Errorf("%w: at most %d decimal places", auctionerrors.ErrInvalidPrice, PriceDecimalPlaces)
	}
	if value.GreaterThanOrEqual(maxPriceExclusive) {
		return fmt.Errorf("%w: at most %d digits", auctionerrors.ErrInvalidPrice, PriceMaxDigits)
	}
	return nil
}

// ValidateLength fails with ErrFieldTooLong when text has more than max runes.
func ValidateLength(text string, max int) error {
	if utf8.RuneCountInString(text) > max {
		return fmt.Errorf("%w (max %d characters)", auctionerrors.ErrFieldTooLong, max)
	}
	return nil
}

// ValidateRequired fails with ErrFieldRequired for blank text.
func ValidateRequired(text string) error {
	if strings.TrimSpace(text) == "" {
		return auctionerrors.ErrFieldRequired
	}
	return nil
}

// ValidateText runs the required, length and content checks for a free-text
// field and returns the first failure.
func ValidateText(text string, max int) error {
	if err := ValidateRequired(text); err != nil {
		return err
	}
	if err := ValidateLength(text, max); err != nil {
		return err
	}
	return ValidateContentPolicy(text)
}

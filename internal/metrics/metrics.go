package metrics

import (
	"errors"
	"strconv"
	"time"

	"auction-market/internal/auctionerrors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BidsTotal counts bid attempts by outcome.
	BidsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_bids_total",
		Help: "Total number of bid attempts by outcome",
	}, []string{"outcome"})

	// ListingsClosedTotal counts listings closed, split by whether a winner was recorded.
	ListingsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_listings_closed_total",
		Help: "Total number of listings closed",
	}, []string{"has_winner"})

	// HTTPRequestDuration records request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auction_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// BidOutcome names the result of a bid attempt for the outcome label.
func BidOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, auctionerrors.ErrListingClosed):
		return "closed"
	case errors.Is(err, auctionerrors.ErrInvalidPrice):
		return "invalid"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, auctionerrors.ErrBidNotHighEnough):
		return "outbid"
	case errors.Is(err, auctionerrors.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// ObserveBid records one bid attempt.
func ObserveBid(err error) {
	BidsTotal.WithLabelValues(BidOutcome(err)).Inc()
}

// ObserveClose records one listing close.
func ObserveClose(hasWinner bool) {
	ListingsClosedTotal.WithLabelValues(strconv.FormatBool(hasWinner)).Inc()
}

// Middleware records the latency of every request under its route template.
func Middleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.
		WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
		Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowUnderLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	key := "ratelimit:orders:203.0.113.7"
	window := time.Minute

	// First request in the window starts the countdown.
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, window).SetVal(true)

	allowed, err := limiter.allow(context.Background(), key, 10, window)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowSubsequentRequestsSkipExpire(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	key := "ratelimit:orders:203.0.113.7"
	mock.ExpectIncr(key).SetVal(5)

	allowed, err := limiter.allow(context.Background(), key, 10, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowBlocksOverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	key := "ratelimit:validate:203.0.113.7"
	mock.ExpectIncr(key).SetVal(61)

	allowed, err := limiter.allow(context.Background(), key, 60, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowSurfacesRedisErrors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)

	key := "ratelimit:orders:203.0.113.7"
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	_, err := limiter.allow(context.Background(), key, 10, time.Minute)
	assert.Error(t, err, "caller decides to fail open")
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	tests := []struct {
		userAgent string
		expected  bool
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", false},
		{"Googlebot/2.1 (+http://www.google.com/bot.html)", true},
		{"python-requests/2.28.1", false},
		{"Scrapy/2.6 spider", true},
		{"my-scraper/1.0", true},
		{"WebCrawler/3.0", true},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isSuspiciousUserAgent(tt.userAgent), "user agent %q", tt.userAgent)
	}
}

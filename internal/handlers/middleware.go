package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"boost-service/internal/models"
	"boost-service/pkg/common"
)

const userContextKey = "currentUser"

// RequireAuth resolves the bearer token to a user row. Session issuance lives
// outside this service; the token is opaque here.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("Authentication required", nil, http.StatusUnauthorized))
			return
		}

		var user models.User
		if err := db.Where("api_token = ? AND active = ?", token, true).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				common.NewErrorResponse("Invalid or expired token", nil, http.StatusUnauthorized))
			return
		}

		c.Set(userContextKey, &user)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				common.NewErrorResponse("Insufficient permissions", nil, http.StatusForbidden))
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// rateLimiter is a fixed-window per-IP counter. Good enough for a
// single-process deployment; a multi-replica setup would move this to Redis.
type rateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	buckets map[string]*bucket
}

type bucket struct {
	count   int
	resetAt time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		window:  window,
		limit:   limit,
		buckets: make(map[string]*bucket),
	}
}

func (r *rateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b, ok := r.buckets[key]
	if !ok || now.After(b.resetAt) {
		r.buckets[key] = &bucket{count: 1, resetAt: now.Add(r.window)}
		return true
	}
	if b.count >= r.limit {
		return false
	}
	b.count++
	return true
}

// RateLimit rejects more than limit requests per IP per minute on the route.
func RateLimit(limit int) gin.HandlerFunc {
	limiter := newRateLimiter(limit, time.Minute)

	return func(c *gin.Context) {
		key := c.ClientIP() + c.FullPath()
		if !limiter.allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				common.NewErrorResponse("Too many requests, slow down", nil, http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}

package middleware

import (
	"JobBridge-backend/internal/utilities"
	"os"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

func keyFunc(c *gin.Context) string {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		return "ip: " + c.ClientIP()
	}
	return "user: " + user.ID.String()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.AbortWithStatusJSON(429, utilities.ErrorResponse{
		Error: "Too many requests. Please try again later.",
	})
}

// RateLimiterMiddleware limits each caller to reqPerSec requests per second.
func RateLimiterMiddleware(reqPerSec uint) gin.HandlerFunc {

	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: reqPerSec,
	})

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      keyFunc,
		ErrorHandler: errorHandler,
	})
}

// EnvRateLimitMiddleware reads the per-second limit from the environment.
func EnvRateLimitMiddleware() gin.HandlerFunc {

	rateLimitString := os.Getenv("RATE_LIMIT_REQUESTS_PER_SECOND")
	rateLimitInt, err := strconv.Atoi(rateLimitString)

	if err != nil || rateLimitInt <= 0 {
		rateLimitInt = 5 // default when env variable is missing or invalid
	}

	return RateLimiterMiddleware(uint(rateLimitInt))
}

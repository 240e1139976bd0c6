package middleware

import (
	"net/http"

	"github.com/psholiveira/barber-system/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewLimiterStore keeps counters in Redis so every replica shares them, or
// in process memory when rdb is nil.
func NewLimiterStore(rdb *redis.Client) limiter.Store {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: "barber:ratelimit"})
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "barber:ratelimit"})
	if err != nil {
		log.Warn().Err(err).Msg("redis rate limiter store unavailable, using memory")
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: "barber:ratelimit"})
	}
	return store
}

// RateLimiter limits requests per client IP under its own bucket name. rate
// is in limiter format, e.g. "1000-M". A store error lets the request through.
func RateLimiter(store limiter.Store, bucket, rate, msg string) gin.HandlerFunc {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		log.Fatal().Err(err).Str("rate", rate).Msg("invalid rate limit")
	}

	return mgin.NewMiddleware(
		limiter.New(store, r),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			return bucket + ":" + c.ClientIP()
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("rate limiter store error")
			c.Next()
		}),
	)
}

// LoginRateLimiter applies the tighter login budget.
func LoginRateLimiter(store limiter.Store, rate string) gin.HandlerFunc {
	return RateLimiter(store, "login", rate, "Muitas tentativas de login. Tente novamente em 1 minuto.")
}

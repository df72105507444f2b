// Package ratelimiter is an in-memory token bucket limiter with HTTP
// middleware. Each key (usually the client IP) gets its own bucket that holds
// up to Capacity tokens and regains RefillRate tokens every RefillInterval.
//
//	limiter, err := ratelimiter.New(ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 6 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer limiter.Close()
//
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ClientIP, nil)).Post("/login", login)
//
// Idle buckets are dropped by a background sweep; Close stops it.
package ratelimiter

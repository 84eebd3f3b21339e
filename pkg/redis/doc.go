// Package redis connects to Redis with go-redis and provides a health probe.
//
// dripfeed uses Redis only for the optional cross-process visit lock, so
// ConnectionURL may be empty; Enabled reports whether it is configured.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis

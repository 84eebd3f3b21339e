// Package mongo opens MongoDB connections for dripfeed from environment
// driven configuration.
//
// Connect retries until the server answers a ping or the attempts run out,
// which keeps container start order from mattering. Healthcheck returns a
// probe function for readiness endpoints.
//
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo

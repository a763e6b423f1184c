// Package mongo provides MongoDB client initialization with retry logic and
// a health check probe.
//
// The client wraps the official driver with connection retries tuned for
// managed deployments, where cold starts and brief network hiccups would
// otherwise fail application startup. Configuration is read from the
// environment:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The connection pool is process-wide: create the client once at startup
// and share it across all request handling.
package mongo

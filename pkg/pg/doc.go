// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations
// from an fs.FS, so migrations can be embedded in the binary of the package
// that owns the schema.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, migrations.FS, "migrations", log); err != nil {
//		return err
//	}
package pg

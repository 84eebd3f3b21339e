// Package app assembles the dripfeed service from its environment
// configuration. Both binaries share it.
package app

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/email"
	"github.com/dmitrymomot/dripfeed/pkg/httpserver"
	"github.com/dmitrymomot/dripfeed/pkg/mongo"
	"github.com/dmitrymomot/dripfeed/pkg/pg"
	"github.com/dmitrymomot/dripfeed/pkg/redis"
	"github.com/dmitrymomot/dripfeed/pkg/sms"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	DeliveryLive = "live"
	DeliveryDev  = "dev"
)

// Config is the full service configuration.
type Config struct {
	Env           string        `env:"APP_ENV" envDefault:"development"`
	Name          string        `env:"APP_NAME" envDefault:"dripfeed"`
	LogLevel      string        `env:"LOG_LEVEL"`
	StoreDriver   string        `env:"STORE_DRIVER" envDefault:"mongo"`
	VisitSchedule string        `env:"VISIT_SCHEDULE"`
	SendTimeout   time.Duration `env:"SEND_TIMEOUT" envDefault:"15s"`
	LockTTL       time.Duration `env:"VISIT_LOCK_TTL" envDefault:"1m"`
	DeliveryMode  string        `env:"DELIVERY_MODE" envDefault:"live"`
	DevOutboxDir  string        `env:"DEV_OUTBOX_DIR" envDefault:"./outbox"`

	Mongo    mongo.Config
	Postgres pg.Config
	Redis    redis.Config
	Email    email.Config
	SMS      sms.Config
	HTTP     httpserver.Config
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo, StorePostgres:
	default:
		return fmt.Errorf("%w: STORE_DRIVER %q: want %q or %q", drip.ErrConfiguration, c.StoreDriver, StoreMongo, StorePostgres)
	}
	switch c.DeliveryMode {
	case DeliveryLive, DeliveryDev:
	default:
		return fmt.Errorf("%w: DELIVERY_MODE %q: want %q or %q", drip.ErrConfiguration, c.DeliveryMode, DeliveryLive, DeliveryDev)
	}
	if c.StoreDriver == StorePostgres && c.Postgres.ConnectionString == "" {
		return fmt.Errorf("%w: PG_CONN_URL is required for the postgres store", drip.ErrConfiguration)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("%w: SEND_TIMEOUT must be positive", drip.ErrConfiguration)
	}
	return nil
}

package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // ConnectionURL is in the format "redis://:password@localhost:6379/0". Empty disables Redis.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of retry attempts to connect to the server.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the interval between retry attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"` // ConnectTimeout bounds the whole connection procedure.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}

// Package config fills configuration structs from environment variables.
//
// Struct fields are described with caarlos0/env tags. Before parsing, Load
// reads .env style files with godotenv; values already present in the process
// environment win over file values, so a deployment can always override a
// checked-in default.
//
//	type MongoConfig struct {
//		URL      string `env:"MONGODB_URL,required"`
//		Database string `env:"MONGODB_DATABASE" envDefault:"dripfeed"`
//	}
//
//	var cfg MongoConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Parsing failures are joined with ErrParsingConfig.
package config

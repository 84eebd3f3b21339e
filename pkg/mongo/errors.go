package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrEmptyDatabaseName      = errors.New("empty mongo database name")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
)

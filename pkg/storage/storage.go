package storage

// Storage is the whole data layer of a single-backend deployment. Only the
// memory store implements all of it; DynamoDB and Postgres cover CreditStore
// and ConnectionRegistry while telemetry lives in memory or Mongo.
type Storage interface {
	CreditStore
	TelemetryStore
	ConnectionRegistry
}

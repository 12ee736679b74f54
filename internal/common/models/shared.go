package models

import "time"

// Log is the shape of one row in the app_logs collection.
type Log struct {
	Message      string    `bson:"message"`
	Integration  string    `bson:"integration,omitempty"`
	Caller       string    `bson:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id"`
	AppId        string    `bson:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}

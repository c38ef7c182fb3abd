// shared/models/settings.go
package models

// Settings is the single global settings document.
type Settings struct {
	Maintenance bool `bson:"maintenance" json:"maintenance"`
	Limit       int  `bson:"limit" json:"limit"` // live salary cap
}

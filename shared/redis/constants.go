// shared/redis/constants.go
package redis

import "errors"

// Key constants. The {slot} hash tag keeps matchup keys on one cluster slot.
const (
	// OpenMatchupKey holds the JSON of the matchup awaiting a vote.
	OpenMatchupKey = "matchup:{slot}:open"
	// MatchupBoundaryKeyPrefix marks a claimed timer boundary (unix seconds).
	MatchupBoundaryKeyPrefix = "matchup:{slot}:tick:%d"
	// RegistryHashPrefix prefixes services:<serviceType> hashes of instanceID -> ServiceInfo.
	RegistryHashPrefix = "services:"
)

var ErrRedisKeyNotFound = errors.New("redis key not found")

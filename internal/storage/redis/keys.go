package redis

import (
	"fmt"

	"github.com/mcoot/battleship-go2/internal/model"
)

// Key prefix for all session data
const keyPrefix = "battleship"

// sessionKey returns the Redis key for a Session
func sessionKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, code)
}

// sessionIndexKey returns the Redis key for the sorted set of live room codes.
// Every member has score 0 so ZRANGE returns codes in lexical order.
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// sessionsForIndexKey returns the Redis key for the SET of rooms an identity is seated in
func sessionsForIndexKey(id model.Identity) string {
	return fmt.Sprintf("%s:idx:sessions_for:%s", keyPrefix, id)
}

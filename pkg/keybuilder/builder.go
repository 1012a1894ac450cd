package keybuilder

import (
	"fmt"
)

const (
	Redis    string = "redis"
	Contacts string = "contacts"
)

// RedisContactsKeyBuild returns the cache key holding a user's contact list.
func RedisContactsKeyBuild(userID string) string {
	return fmt.Sprintf("%s:%s:%s", Redis, Contacts, userID)
}

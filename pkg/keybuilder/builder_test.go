package keybuilder

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestRedisContactsKeyBuild(t *testing.T) {
	assert.Equal(t, "redis:contacts:user-1", RedisContactsKeyBuild("user-1"))
}

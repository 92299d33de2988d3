package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopledger/internal/core/id"
)

func TestKey(t *testing.T) {
	ownerID := id.MustParse("0190f5d2-7c1e-7a3b-9d4e-2f6a8b1c3d5e")
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "shopledger:dashboard:0190f5d2-7c1e-7a3b-9d4e-2f6a8b1c3d5e:2024-01-15", Key(ownerID, date))
	assert.NotEqual(t, Key(ownerID, date), Key(id.New(), date))
}

func TestNewDashboardCache_DefaultTTL(t *testing.T) {
	c := NewDashboardCache(RedisConfig{Addr: "127.0.0.1:0"})
	defer c.Close()

	assert.Equal(t, DefaultTTL, c.ttl)
}

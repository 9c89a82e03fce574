package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := fingerprint("postgres://db1", ModeQuick)
	assert.Len(t, a, 64)
	assert.Equal(t, a, fingerprint("postgres://db1", ModeQuick))
	assert.NotEqual(t, a, fingerprint("postgres://db2", ModeQuick))
	assert.NotEqual(t, a, fingerprint("postgres://db1", ModeFull))
}

func TestResultCache_TTL(t *testing.T) {
	c := newResultCache(time.Minute)
	base := time.Now()
	c.set("k", TargetReport{Score: 9}, base)

	got, ok := c.get("k", base.Add(30*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 9, got.Score)

	_, ok = c.get("k", base.Add(time.Minute+time.Nanosecond))
	assert.False(t, ok, "entry expired")

	_, ok = c.get("missing", base)
	assert.False(t, ok)
}

func TestResultCache_Clear(t *testing.T) {
	c := newResultCache(time.Minute)
	now := time.Now()
	c.set("k", TargetReport{Score: 9}, now)
	c.clear()

	_, ok := c.get("k", now)
	assert.False(t, ok)
}

package ngdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	blob := []byte(`# Build Configuration

root = abcdef0123456789
install = 1111222233334444
encoding = aaaa bbbb
`)

	cfg := ParseConfig(blob)
	assert.Equal(t, 3, cfg.Len())
	assert.Equal(t, "abcdef0123456789", cfg.Get("root"))
	assert.Equal(t, "aaaa bbbb", cfg.Get("encoding"))
	assert.Equal(t, "", cfg.Get("missing"))
}

func TestParseConfigRepeatedKeys(t *testing.T) {
	blob := []byte(`tag = alpha
size = 100
tag = beta
other = x
tag = gamma
`)

	cfg := ParseConfig(blob)

	// First match for single-value lookup, all occurrences in line order.
	assert.Equal(t, "alpha", cfg.Get("tag"))
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.All("tag"))

	// Insertion order preserved across repeats, no deduplication.
	keys := make([]string, 0, cfg.Len())
	for _, p := range cfg.Pairs() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"tag", "size", "tag", "other", "tag"}, keys)
}

func TestConfigStringRoundTrip(t *testing.T) {
	blob := []byte("a = 1\nb=2\na =  3")

	cfg := ParseConfig(blob)
	reparsed := ParseConfig([]byte(cfg.String()))

	require.Equal(t, cfg.Pairs(), reparsed.Pairs())
	assert.Equal(t, []string{"1", "3"}, reparsed.All("a"))
}

func TestParseConfigValueWithEquals(t *testing.T) {
	// Only the first "=" splits; the rest belongs to the value.
	cfg := ParseConfig([]byte("expr = a=b=c"))
	assert.Equal(t, "a=b=c", cfg.Get("expr"))
}

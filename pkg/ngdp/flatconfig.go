package ngdp

import (
	"bufio"
	"bytes"
	"strings"
)

// Pair is a single key/value line from a config blob.
type Pair struct {
	Key   string
	Value string
}

// Config holds a parsed "flat ini" config blob: an ordered sequence of
// key/value pairs in source line order. Keys may repeat; repeated keys are
// never deduplicated or reordered.
type Config struct {
	pairs []Pair
}

// ParseConfig parses a UTF-8 "key = value" blob. Blank lines and lines
// starting with "#" are ignored; each remaining line splits on the first
// "=" with whitespace trimmed from both sides. Values are opaque to this
// layer.
func ParseConfig(data []byte) Config {
	var cfg Config
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		cfg.pairs = append(cfg.pairs, Pair{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return cfg
}

// Get returns the first value for key, or "" if the key is absent.
func (c Config) Get(key string) string {
	for _, p := range c.pairs {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// All returns every value for key in source order.
func (c Config) All(key string) []string {
	var values []string
	for _, p := range c.pairs {
		if p.Key == key {
			values = append(values, p.Value)
		}
	}
	return values
}

// Pairs returns all key/value pairs in source order.
func (c Config) Pairs() []Pair {
	return c.pairs
}

// Len returns the number of key/value lines.
func (c Config) Len() int {
	return len(c.pairs)
}

// String renders the config back to "key = value" lines in source order.
// Reparsing the result yields an equivalent Config.
func (c Config) String() string {
	var sb strings.Builder
	for i, p := range c.pairs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p.Key)
		sb.WriteString(" = ")
		sb.WriteString(p.Value)
	}
	return sb.String()
}

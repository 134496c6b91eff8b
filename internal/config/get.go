package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"drivesync/internal/job"
)

// Get returns the value stored at a dotted key such as
// "monitor.poll_interval_ms". Subject folder keys ("sources.folders.math")
// resolve to the directory actually used, defaults included.
func (c *Config) Get(key string) (string, error) {
	tree, err := c.tree()
	if err != nil {
		return "", err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", fmt.Errorf("config key is empty")
	}

	parts := strings.Split(key, ".")
	if value, ok := c.derived(parts); ok {
		return value, nil
	}
	var node any = tree
	for i, part := range parts {
		table, ok := node.(map[string]any)
		if !ok {
			return "", fmt.Errorf("config key %q: %q is not a table", key, strings.Join(parts[:i], "."))
		}
		next, ok := table[part]
		if !ok {
			return "", fmt.Errorf("unknown config key %q", key)
		}
		node = next
	}
	if _, ok := node.(map[string]any); ok {
		return "", fmt.Errorf("config key %q is a table", key)
	}
	return formatScalar(node), nil
}

// Keys lists every scalar key in dotted form, sorted.
func (c *Config) Keys() ([]string, error) {
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	var keys []string
	var walk func(prefix string, table map[string]any)
	walk = func(prefix string, table map[string]any) {
		for k, v := range table {
			full := k
			if prefix != "" {
				full = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(full, sub)
				continue
			}
			keys = append(keys, full)
		}
	}
	walk("", tree)
	sort.Strings(keys)
	return keys, nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) tree() (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	tree := map[string]any{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode config tree: %w", err)
	}
	return tree, nil
}

func (c *Config) derived(parts []string) (string, bool) {
	if len(parts) != 3 || parts[0] != "sources" || parts[1] != "folders" {
		return "", false
	}
	subject, err := job.ParseSubject(parts[2])
	if err != nil {
		return "", false
	}
	return c.SourceFolder(subject), true
}

func formatScalar(value any) string {
	switch v := value.(type) {
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = formatScalar(item)
		}
		return strings.Join(items, " ")
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

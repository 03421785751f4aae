package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFiles reads dotenv files in order; later files override earlier ones.
func LoadEnvFiles(paths ...string) (map[string]string, error) {
	merged := map[string]string{}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}

// EnvMap turns KEY=value entries into a map. The last entry for a key wins.
func EnvMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		m[k] = v
	}
	return m
}

// MergeEnv overrides entries of base with values, replacing keys in place
// and appending new keys in sorted order.
func MergeEnv(base []string, values map[string]string) []string {
	out := make([]string, 0, len(base)+len(values))
	seen := make(map[string]bool, len(values))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if v, ok := values[k]; ok {
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k+"="+v)
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+values[k])
	}
	return out
}

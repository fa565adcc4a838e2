package config

import (
	"fmt"
	"strconv"
)

// ShardConfig identifies which slice of the feature files this worker runs
type ShardConfig struct {
	Index int
	Total int
}

// LoadShardConfig reads SHARD (1-based) and SHARD_COUNT, both defaulting to 1
func LoadShardConfig(getenv func(string) string) (ShardConfig, error) {
	config := ShardConfig{Index: 1, Total: 1}

	if v := getenv("SHARD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return config, fmt.Errorf("SHARD must be an integer, got %q", v)
		}
		config.Index = n
	}
	if v := getenv("SHARD_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return config, fmt.Errorf("SHARD_COUNT must be an integer, got %q", v)
		}
		config.Total = n
	}

	if config.Total < 1 {
		return config, fmt.Errorf("SHARD_COUNT must be at least 1, got %d", config.Total)
	}
	if config.Index < 1 || config.Index > config.Total {
		return config, fmt.Errorf("SHARD must be between 1 and %d, got %d", config.Total, config.Index)
	}

	return config, nil
}

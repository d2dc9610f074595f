package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// GetEnv reads key and parses it as T. An unset key yields defaultValue.
func GetEnv[T any](key string, defaultValue T) (T, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}

	var err error
	var parsed any

	switch any(defaultValue).(type) {
	case string:
		return any(v).(T), nil
	case int:
		parsed, err = strconv.Atoi(v)
	case int64:
		parsed, err = strconv.ParseInt(v, 10, 64)
	case bool:
		parsed, err = strconv.ParseBool(v)
	case time.Duration:
		parsed, err = time.ParseDuration(v)
	case []string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		parsed = out
	default:
		return defaultValue, errors.Newf("unsupported type for env var %s: %T", key, defaultValue)
	}

	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse env %s as %T", key, defaultValue)
	}
	return parsed.(T), nil
}

package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/examgenius-backend/internal/pkg/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	if log != nil {
		log.Debug("Environment variable found, using environment", "environment", val)
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	return getEnvParsed(key, defaultVal, log, strconv.Atoi)
}

func GetEnvAsFloat(key string, defaultVal float64, log *logger.Logger) float64 {
	return getEnvParsed(key, defaultVal, log, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	return getEnvParsed(key, defaultVal, log, strconv.ParseBool)
}

// GetEnvAsDuration accepts Go duration strings ("45s", "24h") or a bare number of seconds.
func GetEnvAsDuration(key string, defaultVal time.Duration, log *logger.Logger) time.Duration {
	return getEnvParsed(key, defaultVal, log, func(s string) (time.Duration, error) {
		if secs, err := strconv.Atoi(s); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(s)
	})
}

func getEnvParsed[T any](key string, defaultVal T, log *logger.Logger, parse func(string) (T, error)) T {
	if log != nil {
		log = log.With("env_var", key)
	}
	valStr, ok := os.LookupEnv(key)
	valStr = strings.TrimSpace(valStr)
	if !ok || valStr == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	v, err := parse(valStr)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed, using default", "providedVal", valStr, "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	if log != nil {
		log.Debug("Environment variable found, using it", "value", v)
	}
	return v
}

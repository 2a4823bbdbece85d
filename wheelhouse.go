// Package wheelhouse provides the shared bootstrap for the strategy
// simulator: a default logger configured from environment variables.
package wheelhouse

import (
	"os"
	"strconv"

	"github.com/raykavin/wheelhouse/pkg/logger"
	"github.com/raykavin/wheelhouse/pkg/logger/zerolog"
)

// DefaultLog is the process-wide logger used by the CLI and examples.
// Library packages receive it by injection.
var DefaultLog logger.Logger

const (
	defaultLogLevel      = "info"
	defaultLogTimeFormat = "2006-01-02 15:04:05"
	defaultLogColored    = "true"
	defaultLogJSON       = "false"
)

const (
	envLogLevel      = "WHEELHOUSE_LOG_LEVEL"
	envLogTimeFormat = "WHEELHOUSE_LOG_TIME_FORMAT"
	envLogColor      = "WHEELHOUSE_LOG_COLOR"
	envLogJSON       = "WHEELHOUSE_LOG_JSON"
)

func init() {
	log, err := initLogger()
	if err != nil {
		panic(err)
	}

	DefaultLog = zerolog.NewAdapter(log.Logger)
}

// initLogger creates a logger instance configured from environment variables
func initLogger() (*zerolog.Logger, error) {
	logLevel := getEnvWithDefault(envLogLevel, defaultLogLevel)
	logTimeFormat := getEnvWithDefault(envLogTimeFormat, defaultLogTimeFormat)

	logColored, err := parseBoolEnv(envLogColor, defaultLogColored)
	if err != nil {
		return nil, err
	}

	logJSON, err := parseBoolEnv(envLogJSON, defaultLogJSON)
	if err != nil {
		return nil, err
	}

	return zerolog.New(logLevel, logTimeFormat, logColored, logJSON)
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolEnv(key, defaultValue string) (bool, error) {
	return strconv.ParseBool(getEnvWithDefault(key, defaultValue))
}

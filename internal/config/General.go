package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment
// variables. These are populated at startup by LoadConfig.
var (
	// OwnerAccount is the account authorized for privileged vault operations.
	OwnerAccount string
	// TreasuryAccount is the account receiving collected fees.
	TreasuryAccount string

	// TickIntervalSeconds is the wall-clock duration of one tick when the
	// process drives its own clock.
	TickIntervalSeconds uint64
	// SnapshotIntervalTicks is how many ticks elapse between APY snapshots.
	SnapshotIntervalTicks uint64
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. All listed environment variables are required.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	OwnerAccount, err = getEnv("YVM_OWNER")
	if err != nil {
		return err
	}

	TreasuryAccount, err = getEnv("YVM_TREASURY")
	if err != nil {
		return err
	}

	TickIntervalSeconds, err = getEnvAsUint64("YVM_TICK_INTERVAL_SECONDS")
	if err != nil {
		return err
	}

	SnapshotIntervalTicks, err = getEnvAsUint64("YVM_SNAPSHOT_INTERVAL_TICKS")
	if err != nil {
		return err
	}

	log.Debug().
		Str("Owner", OwnerAccount).
		Str("Treasury", TreasuryAccount).
		Uint64("TickIntervalSeconds", TickIntervalSeconds).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

package main

import (
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/yieldforge/yvm/internal/clock"
	"github.com/yieldforge/yvm/internal/config"
	"github.com/yieldforge/yvm/internal/logger"
	"github.com/yieldforge/yvm/internal/rewards"
	"github.com/yieldforge/yvm/internal/state"
	"github.com/yieldforge/yvm/internal/types"
	"github.com/yieldforge/yvm/internal/vault"
	"github.com/yieldforge/yvm/internal/web"
)

// main is the entry point for the YieldForge vault manager.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("YVM Core Starting...")

	// Initialize Database Connection (APY history and cycle continuity)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Resume snapshot numbering from the persisted cycle counter.
	startCycle, err := state.GetCurrentCycleNumber()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load persisted cycle counter")
	}

	// --- 2. Vault Engine Initialization ---
	ticks := clock.NewManual(1)
	engine, err := vault.NewEngine(vault.Config{
		Owner:          types.AccountID(config.OwnerAccount),
		Treasury:       types.AccountID(config.TreasuryAccount),
		Clock:          ticks,
		Params:         config.DefaultVaultParameters,
		Fees:           config.DefaultFeeConfig,
		MaxSlippageBps: config.DefaultMaxSlippageBps,
		StartCycle:     startCycle,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vault engine")
	}

	// The engine is single-operation-at-a-time; one mutex orders the tick
	// loop and the web handlers.
	var mu sync.Mutex

	// --- 3. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, &mu, engine)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting YVM dashboard API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. Reward Source ---
	rewardSource := rewards.NewSource(
		rewardAmountFromEnv(),
		envUint("YVM_REWARD_INTERVAL_TICKS", 6),
	)

	// --- 5. Tick Loop ---
	tickInterval := time.Duration(config.TickIntervalSeconds) * time.Second
	log.Info().Str("interval", tickInterval.String()).Msg("Starting YVM tick loop")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-shutdown:
			log.Info().Msg("Shutdown signal received, stopping YVM")
			return
		case <-ticker.C:
			mu.Lock()
			runTick(engine, ticks, rewardSource)
			mu.Unlock()
		}
	}
}

// runTick advances the clock one tick and drives the periodic vault work:
// reward accrual, compounding, and APY snapshots.
func runTick(engine *vault.Engine, ticks *clock.Manual, source *rewards.Source) {
	ticks.Advance(1)
	tick := ticks.Now()

	source.Tick(tick, engine.AccrueReward)

	// Benign no-op until the compound cooldown elapses.
	if compounded, err := engine.CompoundRewards(types.AccountID(config.OwnerAccount)); err != nil {
		log.Error().Err(err).Msg("Compound failed")
	} else if compounded.IsPositive() {
		log.Info().Str("compounded", compounded.String()).Msg("Compounded rewards")
	}

	if config.SnapshotIntervalTicks > 0 && tick%config.SnapshotIntervalTicks == 0 {
		snapshot, err := engine.SnapshotAPY(types.AccountID(config.OwnerAccount))
		if err != nil {
			log.Error().Err(err).Msg("APY snapshot failed")
			return
		}
		if err := state.SaveAPYSnapshot(snapshot); err != nil {
			log.Error().Err(err).Msg("Failed to persist APY snapshot")
		}
		if err := state.SetCycleNumber(engine.GetVaultInfo().CurrentCycle); err != nil {
			log.Error().Err(err).Msg("Failed to persist cycle counter")
		}
	}
}

func rewardAmountFromEnv() sdkmath.Int {
	raw := os.Getenv("YVM_REWARD_AMOUNT")
	if raw == "" {
		return sdkmath.ZeroInt()
	}
	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		log.Fatal().Str("value", raw).Msg("YVM_REWARD_AMOUNT must be a non-negative integer")
	}
	return amount
}

func envUint(key string, defaultValue uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/yieldforge/yvm/internal/logger"
	"github.com/yieldforge/yvm/internal/state"
	"github.com/yieldforge/yvm/internal/types"
	"github.com/yieldforge/yvm/internal/vault"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the vault's read-only queries over HTTP for the
// dashboard. It never mutates the engine.
type WebServer struct {
	router *mux.Router
	port   string

	// The engine runs single-operation-at-a-time; mu serializes handler
	// reads against the process's operation loop.
	mu    *sync.Mutex
	vault *vault.Engine
}

// NewWebServer creates a new web server instance over the given engine.
// The mutex must be the same one guarding the operation loop.
func NewWebServer(port string, mu *sync.Mutex, engine *vault.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		mu:     mu,
		vault:  engine,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/vault/info", ws.handleVaultInfo).Methods("GET")
	api.HandleFunc("/vault/stats", ws.handleVaultStats).Methods("GET")
	api.HandleFunc("/vault/price", ws.handleSharePrice).Methods("GET")
	api.HandleFunc("/vault/fees", ws.handleFeeInfo).Methods("GET")
	api.HandleFunc("/users/{account}", ws.handleUserInfo).Methods("GET")
	api.HandleFunc("/users/{account}/boost", ws.handleUserBoost).Methods("GET")
	api.HandleFunc("/users/{account}/rewards", ws.handleUserRewards).Methods("GET")
	api.HandleFunc("/apy/recent", ws.handleRecentSnapshots).Methods("GET")
	api.HandleFunc("/apy/summary", ws.handleYieldSummary).Methods("GET")
	api.HandleFunc("/apy/{cycle}", ws.handleApySnapshot).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	if err := state.TestDBConnection(); err != nil {
		health["status"] = "degraded"
		health["database_error"] = err.Error()
	}
	ws.writeJSON(w, http.StatusOK, health)
}

func (ws *WebServer) handleVaultInfo(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	info := ws.vault.GetVaultInfo()
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, info)
}

func (ws *WebServer) handleVaultStats(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	stats := ws.vault.GetVaultStatistics()
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, stats)
}

func (ws *WebServer) handleSharePrice(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	price := ws.vault.GetSharePrice()
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, map[string]string{"share_price": price.String()})
}

func (ws *WebServer) handleFeeInfo(w http.ResponseWriter, r *http.Request) {
	ws.mu.Lock()
	fees := ws.vault.GetFeeInfo()
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, fees)
}

func (ws *WebServer) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	account := types.AccountID(mux.Vars(r)["account"])
	ws.mu.Lock()
	info := ws.vault.GetUserInfo(account)
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, info)
}

func (ws *WebServer) handleUserBoost(w http.ResponseWriter, r *http.Request) {
	account := types.AccountID(mux.Vars(r)["account"])
	ws.mu.Lock()
	boost := ws.vault.GetUserBoostInfo(account)
	data := ws.vault.GetUserTimeWeightedData(account)
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, map[string]any{
		"boost":         boost,
		"time_weighted": data,
	})
}

func (ws *WebServer) handleUserRewards(w http.ResponseWriter, r *http.Request) {
	account := types.AccountID(mux.Vars(r)["account"])
	ws.mu.Lock()
	estimated := ws.vault.GetUserEstimatedRewards(account)
	ws.mu.Unlock()
	ws.writeJSON(w, http.StatusOK, map[string]string{"estimated_rewards": estimated.String()})
}

func (ws *WebServer) handleApySnapshot(w http.ResponseWriter, r *http.Request) {
	cycle, err := parseUint(mux.Vars(r)["cycle"])
	if err != nil {
		ws.writeError(w, http.StatusBadRequest, "invalid cycle id")
		return
	}

	ws.mu.Lock()
	snapshot, err := ws.vault.GetApySnapshot(cycle)
	ws.mu.Unlock()
	if err != nil {
		if errors.Is(err, vault.ErrSnapshotNotFound) {
			ws.writeError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		ws.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ws.writeJSON(w, http.StatusOK, snapshot)
}

func (ws *WebServer) handleRecentSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := parseUint(raw); err == nil && parsed > 0 {
			limit = int(parsed)
		}
	}

	snapshots, err := state.GetRecentSnapshots(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load recent snapshots")
		ws.writeError(w, http.StatusInternalServerError, "failed to load snapshots")
		return
	}
	ws.writeJSON(w, http.StatusOK, snapshots)
}

func (ws *WebServer) handleYieldSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := state.GetYieldSummary()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to load yield summary")
		ws.writeError(w, http.StatusInternalServerError, "failed to load yield summary")
		return
	}
	ws.writeJSON(w, http.StatusOK, summary)
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (ws *WebServer) writeError(w http.ResponseWriter, status int, message string) {
	ws.writeJSON(w, status, map[string]string{"error": message})
}

func parseUint(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}

// corsMiddleware adds CORS headers for the dashboard frontend.
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs request latency per endpoint.
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

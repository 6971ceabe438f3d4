// Package gateway serves the HTTP status endpoint used by uptime monitors.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/nextlevelbuilder/gptrelay/internal/config"
	"github.com/nextlevelbuilder/gptrelay/internal/stats"
)

const notLoggedIn = "Not logged in"

// BotStatus is the view of the chat connection the status endpoint reports.
type BotStatus interface {
	Ready() bool
	BotIdentity() (tag, id string)
	GuildCount() int
}

// Server is the HTTP status server.
type Server struct {
	cfg         config.StatusConfig
	bot         BotStatus
	rateLimiter *RateLimiter
	now         func() time.Time

	httpServer *http.Server
}

// NewServer creates a status server reporting on bot.
func NewServer(cfg config.StatusConfig, bot BotStatus) *Server {
	return &Server{
		cfg:         cfg,
		bot:         bot,
		rateLimiter: NewRateLimiter(cfg.RateLimitRPM, 5),
		now:         time.Now,
	}
}

// BuildMux creates the HTTP handler with all status routes.
func (s *Server) BuildMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /status", s.handleStatus)

	if s.rateLimiter.Enabled() {
		slog.Info("status rate limiting enabled", "rpm", s.cfg.RateLimitRPM)
		return s.limit(mux)
	}
	return mux
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.BuildMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("status server starting", "addr", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("status server shutdown", "error", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	return nil
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rootResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"` // seconds
	Timestamp string  `json:"timestamp"`
	BotStatus string  `json:"bot_status"`
	Guilds    int     `json:"guilds"`
}

type pingResponse struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type memoryUsage struct {
	RSS          uint64 `json:"rss"`
	HeapTotal    uint64 `json:"heapTotal"`
	HeapUsed     uint64 `json:"heapUsed"`
	External     uint64 `json:"external"`
	ArrayBuffers uint64 `json:"arrayBuffers"`
}

type statusResponse struct {
	BotName       string      `json:"bot_name"`
	BotID         *string     `json:"bot_id"`
	GuildsCount   int         `json:"guilds_count"`
	UptimeSeconds float64     `json:"uptime_seconds"`
	MemoryUsage   memoryUsage `json:"memory_usage"`
	NodeVersion   string      `json:"node_version"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	botStatus := "Not Ready"
	if s.bot.Ready() {
		botStatus = "Ready"
	}
	writeJSON(w, http.StatusOK, rootResponse{
		Status:    "online",
		Uptime:    stats.Uptime().Seconds(),
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		BotStatus: botStatus,
		Guilds:    s.bot.GuildCount(),
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pingResponse{
		Message:   "pong",
		Timestamp: s.now().UnixMilli(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	tag, id := s.bot.BotIdentity()
	if tag == "" {
		tag = notLoggedIn
	}
	resp := statusResponse{
		BotName:       tag,
		GuildsCount:   s.bot.GuildCount(),
		UptimeSeconds: stats.Uptime().Seconds(),
		NodeVersion:   runtime.Version(),
	}
	if id != "" {
		resp.BotID = &id
	}

	mem := stats.ReadProcessMemory()
	resp.MemoryUsage = memoryUsage{
		RSS:       mem.RSS,
		HeapTotal: mem.HeapSys,
		HeapUsed:  mem.HeapAlloc,
	}
	if mem.Sys > mem.HeapSys {
		resp.MemoryUsage.External = mem.Sys - mem.HeapSys
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("status: write response", "error", err)
	}
}

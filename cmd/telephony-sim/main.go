package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MockDialer simulates the legacy dialer admin interface: a GET API that
// always answers HTTP 200 and reports failure inside the plain-text body
// with an "ERROR:" prefix.
type MockDialer struct {
	user        string
	pass        string
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	instanceID  string
	rng         *rand.Rand

	mu        sync.Mutex
	campaigns map[string]string
	lists     map[string]string
}

// NewMockDialer creates a new mock dialer instance
func NewMockDialer(user, pass string, successRate float64, minDelay, maxDelay time.Duration) *MockDialer {
	return &MockDialer{
		user:        user,
		pass:        pass,
		successRate: successRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		instanceID:  "MOCK_DIALER_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		campaigns:   make(map[string]string),
		lists:       make(map[string]string),
	}
}

func (m *MockDialer) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockDialer) shouldSucceed() bool {
	return m.rng.Float64() < m.successRate
}

func (m *MockDialer) setCampaign(id, active string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[id] = active
}

func (m *MockDialer) setList(id, active string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[id] = active
}

// Handler struct holds the mock dialer and routes
type Handler struct {
	dialer *MockDialer
}

func NewHandler(dialer *MockDialer) *Handler {
	return &Handler{dialer: dialer}
}

// AdminAPI dispatches on the "function" query parameter the way the real
// admin interface does. Every outcome is HTTP 200; only the body tells
// success from failure.
func (h *Handler) AdminAPI(c *gin.Context) {
	user := c.Query("user")
	pass := c.Query("pass")
	function := c.Query("function")

	if user != h.dialer.user || pass != h.dialer.pass {
		log.Warn().Str("user", user).Msg("rejected login")
		c.String(http.StatusOK, "ERROR: Login incorrect")
		return
	}

	// Simulate the admin interface latency
	time.Sleep(h.dialer.randomDelay())

	if !h.dialer.shouldSucceed() {
		log.Warn().Str("function", function).Msg("simulated admin failure")
		c.String(http.StatusOK, "ERROR: "+function+" could not be executed")
		return
	}

	switch function {
	case "update_campaign":
		campaignID := c.Query("campaign_id")
		active := c.Query("active")
		if campaignID == "" || (active != "Y" && active != "N") {
			c.String(http.StatusOK, "ERROR: update_campaign invalid parameters")
			return
		}
		h.dialer.setCampaign(campaignID, active)
		log.Info().Str("campaign_id", campaignID).Str("active", active).Msg("campaign updated")
		c.String(http.StatusOK, "SUCCESS: update_campaign campaign has been updated|"+campaignID)

	case "update_list":
		listID := c.Query("list_id")
		active := c.Query("active")
		if listID == "" || (active != "Y" && active != "N") {
			c.String(http.StatusOK, "ERROR: update_list invalid parameters")
			return
		}
		h.dialer.setList(listID, active)
		log.Info().Str("list_id", listID).Str("active", active).Msg("list updated")
		c.String(http.StatusOK, "SUCCESS: update_list list has been updated|"+listID)

	case "version":
		c.String(http.StatusOK, "VERSION: 2.14-783|BUILD: "+h.dialer.instanceID)

	default:
		c.String(http.StatusOK, "ERROR: "+function+" is not a valid function")
	}
}

// GetState dumps the activation flags the simulator has accumulated, so
// integration runs can assert what the console actually sent.
func (h *Handler) GetState(c *gin.Context) {
	h.dialer.mu.Lock()
	defer h.dialer.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"instance_id": h.dialer.instanceID,
		"campaigns":   h.dialer.campaigns,
		"lists":       h.dialer.lists,
	})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"instance_id":  h.dialer.instanceID,
		"timestamp":    time.Now(),
		"success_rate": h.dialer.successRate,
	})
}

// UpdateConfig allows changing simulator behaviour at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		SuccessRate *float64 `json:"success_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.SuccessRate != nil {
		if *config.SuccessRate >= 0 && *config.SuccessRate <= 1.0 {
			h.dialer.successRate = *config.SuccessRate
			log.Info().Float64("rate", *config.SuccessRate).Msg("Updated success rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"success_rate": h.dialer.successRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// The path the real admin interface lives on
	router.GET("/dialer/non_agent_api.php", handler.AdminAPI)

	// Simulator-only surface
	v1 := router.Group("/api/v1")
	{
		v1.GET("/state", handler.GetState)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8082")
	user := getEnv("API_USER", "console")
	pass := getEnv("API_PASS", "console")
	successRate := getEnvFloat("SUCCESS_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("success_rate", successRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Dialer Admin API")

	// Create mock dialer
	dialer := NewMockDialer(user, pass, successRate, minDelay, maxDelay)
	handler := NewHandler(dialer)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

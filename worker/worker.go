package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hearthwatch/sdk/config"
	"github.com/hearthwatch/sdk/events"
	"github.com/hearthwatch/sdk/registry"
	"github.com/hearthwatch/sdk/repair"
)

// Options configures the worker behavior.
type Options struct {
	// Bus carries the inspection job queue.
	// If nil, the worker connects to Redis using RedisURL.
	Bus events.Bus

	// RedisURL is the Redis connection string (e.g., "redis://localhost:6379").
	// Ignored when Bus is set.
	RedisURL string

	// Registry receives worker presence announcements.
	// If nil, the worker runs without announcing itself.
	Registry registry.Registry

	// Concurrency is the number of worker goroutines to start.
	// If 0, uses value from hearthwatch.yaml or default (4).
	Concurrency int

	// PopTimeout bounds each blocking job pop so workers can check for
	// shutdown between attempts.
	// If 0, uses value from hearthwatch.yaml or default (5s).
	PopTimeout time.Duration

	// ShutdownTimeout is the time to wait for graceful shutdown.
	// If 0, uses value from hearthwatch.yaml or default (30s).
	ShutdownTimeout time.Duration

	// Logger is the structured logger for worker operations.
	// If nil, a default logger will be created.
	Logger *slog.Logger

	// Config is the parsed hearthwatch.yaml configuration.
	// If nil, the worker will attempt to load it from the current directory.
	Config *config.Config

	// ConfigPath is the path to hearthwatch.yaml.
	// If empty and Config is nil, searches from current directory.
	ConfigPath string
}

// Run starts the worker loop for the given manager with the specified options.
// It connects to Redis, announces worker presence, starts N worker goroutines
// based on Concurrency, and handles graceful shutdown on SIGTERM/SIGINT.
//
// Configuration priority (highest to lowest):
//  1. Explicit Options values (if non-zero)
//  2. hearthwatch.yaml inspection section
//  3. Default values
//
// Each worker goroutine:
//  1. Pops an inspection job from the queue
//  2. Runs the named repair, or every registered repair for an unscoped job
//  3. The repair reconciles its issues in the issue store directly
//
// The function blocks until a shutdown signal is received or an error occurs.
// On shutdown, it waits for all workers to finish their current inspections
// before returning.
//
// Returns an error if the Redis connection or worker registration fails.
func Run(m *repair.Manager, opts Options) error {
	if m == nil {
		return fmt.Errorf("manager is required")
	}

	// Load hearthwatch.yaml if not provided
	cfg := opts.Config
	if cfg == nil {
		var err error
		if opts.ConfigPath != "" {
			cfg, err = config.Load(opts.ConfigPath)
		} else {
			cfg, err = config.LoadFromCurrentDir()
		}
		if err != nil {
			// hearthwatch.yaml is optional - just use defaults
			cfg = nil
		}
	}

	// Apply configuration with priority: explicit opts > hearthwatch.yaml > defaults
	opts = applyConfig(opts, cfg)

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	// Generate unique worker ID (hostname + PID + UUID)
	workerID := generateWorkerID()

	logger := opts.Logger.With("worker_id", workerID)

	logger.Info("worker starting",
		"concurrency", opts.Concurrency,
		"repairs", m.Repairs(),
	)

	// Connect to Redis unless a bus was injected
	bus := opts.Bus
	if bus == nil {
		redisBus, err := events.NewRedisBus(events.RedisOptions{
			URL:        opts.RedisURL,
			PopTimeout: opts.PopTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisBus.Close()
		bus = redisBus
	}

	// Create context for worker lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Announce worker presence
	if opts.Registry != nil {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}

		info := registry.WorkerInfo{
			ID:        workerID,
			Hostname:  hostname,
			Repairs:   m.Repairs(),
			StartedAt: time.Now(),
		}

		if err := opts.Registry.RegisterWorker(ctx, info); err != nil {
			logger.Error("failed to register worker", "error", err)
			return fmt.Errorf("failed to register worker: %w", err)
		}

		logger.Info("worker registered", "repairs", info.Repairs)

		// Ensure the presence entry is withdrawn on exit
		defer func() {
			// Use background context for cleanup since ctx may be cancelled
			cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cleanupCancel()
			if err := opts.Registry.DeregisterWorker(cleanupCtx, workerID); err != nil {
				logger.Error("failed to deregister worker", "error", err)
			}
		}()
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	// Start worker goroutines
	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			workerLoop(ctx, workerNum, m, bus, logger)
		}(i)
	}

	logger.Info("worker started", "workers", opts.Concurrency)

	// Wait for shutdown signal
	sig := <-sigChan
	logger.Info("received signal, initiating graceful shutdown", "signal", sig)

	// Cancel context to stop workers
	cancel()

	// Wait for workers to finish with timeout
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		logger.Info("worker shutdown complete")
	case <-time.After(opts.ShutdownTimeout):
		logger.Warn("worker shutdown timeout exceeded", "timeout", opts.ShutdownTimeout)
	}

	return nil
}

// workerLoop is the main loop for a single worker goroutine.
// It continuously pops inspection jobs from the queue and runs them
// until the context is cancelled.
func workerLoop(ctx context.Context, workerNum int, m *repair.Manager, bus events.Bus, logger *slog.Logger) {
	logger = logger.With("worker_num", workerNum)
	logger.Debug("worker loop started")

	for {
		// Check if context is cancelled before popping
		select {
		case <-ctx.Done():
			logger.Debug("worker loop stopped", "reason", "context_cancelled")
			return
		default:
		}

		// Pop inspection job from queue (blocking with context)
		job, err := bus.PopJob(ctx)
		if err != nil {
			// Check if context was cancelled during PopJob
			if ctx.Err() != nil {
				logger.Debug("worker loop stopped", "reason", "context_error")
				return
			}
			// Log error and continue
			logger.Error("failed to pop inspection job", "error", err)
			continue
		}

		// A nil job means the pop timed out; loop around to re-check shutdown
		if job == nil {
			continue
		}

		logger.Info("received inspection job",
			"job_id", job.ID,
			"repair", job.Repair,
			"reason", job.Reason,
			"wait_ms", job.Age().Milliseconds(),
		)

		processJob(ctx, m, job, logger)
	}
}

// processJob runs a single inspection job against the manager.
// A job with an empty repair name runs every registered repair.
func processJob(ctx context.Context, m *repair.Manager, job *events.InspectJob, logger *slog.Logger) {
	start := time.Now()

	var err error
	if job.Repair == "" {
		err = m.InspectAll(ctx)
	} else {
		err = m.Inspect(ctx, job.Repair)
	}

	if err != nil {
		logger.Error("inspection job failed",
			"job_id", job.ID,
			"repair", job.Repair,
			"error", err,
		)
		return
	}

	logger.Info("inspection job completed",
		"job_id", job.ID,
		"repair", job.Repair,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// generateWorkerID creates a unique identifier for this worker instance.
// Uses hostname + PID + UUID for uniqueness.
func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	pid := os.Getpid()

	// Add UUID suffix for additional uniqueness
	id := uuid.New().String()[:8]

	return fmt.Sprintf("%s-%d-%s", hostname, pid, id)
}

// applyConfig applies hearthwatch.yaml settings to Options.
// Explicit Options values take priority over hearthwatch.yaml values.
func applyConfig(opts Options, cfg *config.Config) Options {
	var redisCfg *config.RedisConfig
	var inspCfg *config.InspectionConfig
	if cfg != nil {
		redisCfg = cfg.Redis
		inspCfg = cfg.Inspection
	}

	// The getters fall back to defaults on nil sections
	if opts.RedisURL == "" {
		opts.RedisURL = redisCfg.GetURL()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = inspCfg.GetConcurrency()
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = inspCfg.GetQueuePopTimeout()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = inspCfg.GetShutdownTimeout()
	}

	return opts
}

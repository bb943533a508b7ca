// Package health provides reusable health check functions for Hearthwatch.
//
// This package offers standardized ways to verify dependencies, connectivity,
// and subsystem state. It is designed to help deployments implement consistent
// health checking patterns.
//
// # Health Check Functions
//
// The package provides six main health check functions:
//
//   - CheckPing: Verify a pingable client (event bus, state table) responds
//   - CheckRegistry: Verify the entity registry is reachable and count entries
//   - CheckSource: Verify the dashboard source is readable and count dashboards
//   - NetworkCheck: Verify TCP connectivity to a host:port
//   - FileCheck: Verify a file or directory exists
//   - Combine: Aggregate multiple health checks into a single status
//
// # Usage Example
//
//	import (
//	    "context"
//	    "time"
//	    "github.com/hearthwatch/sdk/health"
//	)
//
//	// Check individual subsystems
//	busStatus := health.CheckPing(ctx, "event bus", bus)
//	if busStatus.IsUnhealthy() {
//	    log.Fatal("event bus is unreachable")
//	}
//
//	// Check network connectivity
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	redisStatus := health.NetworkCheck(ctx, "redis.internal", 6379)
//
//	// Combine multiple checks
//	overall := health.Combine(
//	    health.CheckPing(ctx, "event bus", bus),
//	    health.CheckRegistry(ctx, reg),
//	    health.CheckSource(ctx, source),
//	    redisStatus,
//	)
//
//	if overall.IsUnhealthy() {
//	    log.Printf("Health check failed: %s", overall.Message)
//	    log.Printf("Details: %+v", overall.Details)
//	}
//
// # Health Status Priority
//
// When combining health checks with Combine(), the result follows this priority:
//
//   - Unhealthy: If any check is unhealthy, the combined result is unhealthy
//   - Degraded: If any check is degraded (and none unhealthy), the result is degraded
//   - Healthy: If all checks are healthy, the result is healthy
//
// # Context and Timeouts
//
// CheckPing, CheckRegistry, CheckSource, and NetworkCheck accept a context
// for timeout and cancellation control. If nil is passed to NetworkCheck,
// a default 5-second timeout is used.
package health

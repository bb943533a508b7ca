// Package health provides reusable health check functions for Hearthwatch.
// It offers standardized ways to verify dependencies, connectivity, and subsystem state.
package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hearthwatch/sdk/dashboard"
	"github.com/hearthwatch/sdk/registry"
	"github.com/hearthwatch/sdk/types"
)

// Pinger is anything that can answer a liveness probe. Both the event bus
// and the live state client satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckPing verifies that a pingable client responds. The name identifies
// the subsystem in the resulting status message.
//
// Example:
//
//	status := health.CheckPing(ctx, "event bus", bus)
//	if status.IsUnhealthy() {
//	    log.Fatal("event bus is unreachable")
//	}
func CheckPing(ctx context.Context, name string, p Pinger) types.HealthStatus {
	if name == "" {
		name = "unnamed subsystem"
	}

	if p == nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("%s is not configured", name),
			map[string]any{"subsystem": name},
		)
	}

	if err := p.Ping(ctx); err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("failed to reach %s", name),
			map[string]any{
				"subsystem": name,
				"error":     err.Error(),
			},
		)
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("%s is reachable", name),
	)
}

// CheckRegistry verifies that the entity registry is reachable by listing
// its entries. An empty registry is healthy; a fresh deployment has no
// entities yet.
//
// Example:
//
//	status := health.CheckRegistry(ctx, reg)
//	if status.IsUnhealthy() {
//	    log.Println("entity registry is unreachable")
//	}
func CheckRegistry(ctx context.Context, reg registry.Registry) types.HealthStatus {
	if reg == nil {
		return types.NewUnhealthyStatus("entity registry is not configured", nil)
	}

	ids, err := reg.EntityIDs(ctx)
	if err != nil {
		return types.NewUnhealthyStatus(
			"failed to list registry entries",
			map[string]any{"error": err.Error()},
		)
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("registry holds %d entities", len(ids)),
	)
}

// CheckSource verifies that the dashboard source is readable by listing
// its dashboards. A source with no dashboards is degraded rather than
// unhealthy; there is nothing to inspect, but nothing is broken either.
//
// Example:
//
//	status := health.CheckSource(ctx, source)
//	if status.IsUnhealthy() {
//	    log.Println("dashboard source is unreadable")
//	}
func CheckSource(ctx context.Context, src dashboard.Source) types.HealthStatus {
	if src == nil {
		return types.NewUnhealthyStatus("dashboard source is not configured", nil)
	}

	dashboards, err := src.List(ctx)
	if err != nil {
		return types.NewUnhealthyStatus(
			"failed to list dashboards",
			map[string]any{"error": err.Error()},
		)
	}

	if len(dashboards) == 0 {
		return types.NewDegradedStatus(
			"dashboard source is empty",
			map[string]any{"dashboards": 0},
		)
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("%d dashboard(s) available", len(dashboards)),
	)
}

// NetworkCheck verifies TCP connectivity to a host and port.
// It uses the provided context for timeout and cancellation control.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	status := health.NetworkCheck(ctx, "redis.internal", 6379)
//	if status.IsUnhealthy() {
//	    log.Println("Cannot reach redis.internal:6379")
//	}
func NetworkCheck(ctx context.Context, host string, port int) types.HealthStatus {
	if host == "" {
		return types.NewUnhealthyStatus("host cannot be empty", nil)
	}

	if port <= 0 || port > 65535 {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("invalid port number: %d", port),
			map[string]any{"port": port},
		)
	}

	// Use context with timeout if not already set
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	address := net.JoinHostPort(host, strconv.Itoa(port))
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("failed to connect to %s", address),
			map[string]any{
				"host":  host,
				"port":  port,
				"error": err.Error(),
			},
		)
	}

	// Close connection immediately
	conn.Close()

	return types.NewHealthyStatus(
		fmt.Sprintf("successfully connected to %s", address),
	)
}

// FileCheck verifies that a file or directory exists at the specified path.
// It returns healthy if the path exists, unhealthy otherwise.
//
// Example:
//
//	status := health.FileCheck("/etc/hearthwatch/dashboards")
//	if status.IsUnhealthy() {
//	    log.Fatal("dashboards directory does not exist")
//	}
func FileCheck(path string) types.HealthStatus {
	if path == "" {
		return types.NewUnhealthyStatus("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewUnhealthyStatus(
				fmt.Sprintf("path '%s' does not exist", path),
				map[string]any{
					"path": path,
				},
			)
		}

		return types.NewUnhealthyStatus(
			fmt.Sprintf("failed to stat path '%s'", path),
			map[string]any{
				"path":  path,
				"error": err.Error(),
			},
		)
	}

	fileType := "file"
	if info.IsDir() {
		fileType = "directory"
	}

	return types.NewHealthyStatus(
		fmt.Sprintf("%s '%s' exists", fileType, path),
	)
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
//
// Example:
//
//	status := health.Combine(
//	    health.CheckPing(ctx, "event bus", bus),
//	    health.CheckRegistry(ctx, reg),
//	    health.CheckSource(ctx, source),
//	)
//	if status.IsUnhealthy() {
//	    log.Fatal("Subsystem dependencies not met")
//	}
func Combine(checks ...types.HealthStatus) types.HealthStatus {
	if len(checks) == 0 {
		return types.NewHealthyStatus("no checks provided")
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		switch check.Status {
		case types.StatusUnhealthy:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			unhealthyChecks = append(unhealthyChecks, msg)
		case types.StatusDegraded:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			degradedChecks = append(degradedChecks, msg)
		case types.StatusHealthy:
			healthyCount++
		}
	}

	// Return unhealthy if any check is unhealthy
	if len(unhealthyChecks) > 0 {
		return types.NewUnhealthyStatus(
			fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			},
		)
	}

	// Return degraded if any check is degraded
	if len(degradedChecks) > 0 {
		return types.NewDegradedStatus(
			fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			},
		)
	}

	// All checks are healthy
	return types.NewHealthyStatus(
		fmt.Sprintf("all %d check(s) passed", len(checks)),
	)
}

// Package worker provides the main loop for running repairs as Redis queue workers.
//
// # Overview
//
// The worker package enables inspections to run as background workers that
// consume inspection jobs from a Redis queue. This allows Hearthwatch
// deployments to scale inspection work horizontally across multiple worker
// processes or containers instead of running every repair inside the
// dashboard process.
//
// # Architecture
//
// Workers operate in a producer-consumer pattern:
//   - Event listeners (producers): Push InspectJobs onto the Redis queue
//   - Inspection workers (consumers): Pop InspectJobs and run the named repairs
//   - Issue store (sink): Inspections reconcile issues directly, so no
//     result channel is needed
//
// # Usage
//
// To run a worker for a set of repairs:
//
//	func main() {
//	    m := repair.NewManager(repair.ManagerConfig{})
//
//	    r, err := repair.NewUnknownEntityReferences()
//	    if err != nil {
//	        log.Fatalf("Repair setup failed: %v", err)
//	    }
//	    if err := m.Register(context.Background(), r); err != nil {
//	        log.Fatalf("Repair registration failed: %v", err)
//	    }
//
//	    // Configure worker options
//	    opts := worker.Options{
//	        RedisURL:        "redis://localhost:6379",
//	        Concurrency:     4,  // Number of worker goroutines
//	        ShutdownTimeout: 30 * time.Second,
//	    }
//
//	    // Run the worker (blocks until shutdown)
//	    if err := worker.Run(m, opts); err != nil {
//	        log.Fatalf("Worker failed: %v", err)
//	    }
//	}
//
// # Concurrency
//
// The Concurrency option controls how many goroutines pop and process jobs
// in parallel. A single repair never runs overlapping inspections; the
// manager serializes them, so concurrency pays off when the manager holds
// several repairs or jobs arrive for different repairs at once.
//
// # Graceful Shutdown
//
// Workers handle SIGTERM and SIGINT signals gracefully:
//  1. Signal received, context cancelled
//  2. Workers finish the inspection they are running
//  3. No new jobs are popped from the queue
//  4. Workers exit once current work completes
//  5. Run() returns (or times out after ShutdownTimeout)
//
// Each blocking pop is bounded by the queue pop timeout and returns a nil
// job when it elapses, so an idle worker notices cancellation within one
// timeout period.
//
// # Worker Presence
//
// When Options.Registry is set, the worker announces itself on startup
// with its ID, hostname, and the repairs it serves, and withdraws the
// entry on shutdown. The etcd-backed registry binds presence to a lease,
// so entries from crashed workers expire on their own.
//
// # Redis Queue Schema
//
// Workers interact with Redis using the following key patterns:
//   - hearthwatch:jobs:inspect - List containing InspectJobs (LPUSH/BRPOP)
//   - hearthwatch:events:<type> - Pub/sub channels carrying change events
//
// # Error Handling
//
// The worker loop is designed to be resilient:
//   - Redis connection errors: Fatal, causes Run() to return
//   - Pop errors: Logged and loop continues
//   - Inspection errors: Logged; the job is consumed and the loop continues
//   - Context cancellation: Graceful shutdown initiated
package worker

// Package service is the single entry point into the scheduler. It
// serializes commands, journals the ones that change the schedule, renders
// their output lines and forwards side effects: deliveries to the outbox,
// ETA changes to the notifier, counts to metrics.
//
// It is decoupled from transports; the script runner and the gRPC server
// both drive it through Execute.
package service

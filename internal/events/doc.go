// Package events carries task domain events from the services to handlers
// that are registered independently of them, such as the audit log.
//
// InMemoryEventEmitter fans an event out synchronously. Dispatcher wraps an
// emitter with a bounded queue and a worker pool so the caller never waits on
// handlers.
package events

// Package ports defines the contracts between the dispatch core and its adapters:
// persistence, directories, cache, event bus and real-time observers.
//
// Every method takes a context.Context; all of them may block on I/O.
package ports

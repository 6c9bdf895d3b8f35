package logging

import (
	"log/slog"
)

// WithScan creates a logger tagged with a scan instance id and the index it drives.
//
// Example:
//
//	log := logging.WithScan(scanID, "idx_vectors")
//	log.Debug("dangling record skipped", "rid", rid)
func WithScan(scanID, indexName string) *slog.Logger {
	return GetLogger().With("scan_id", scanID, "index", indexName)
}

// WithIndex creates a logger with index context.
func WithIndex(indexName string) *slog.Logger {
	return GetLogger().With("index", indexName)
}

// WithStore creates a logger with record store context.
func WithStore(storeName string) *slog.Logger {
	return GetLogger().With("store", storeName)
}

// WithComponent creates a logger with component/subsystem context.
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}

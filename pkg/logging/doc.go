// Package logging provides a process-wide structured logger.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. Storage and
// execution code obtains its logger through this package so that level and
// output destination are controlled from a single place.
//
// # Initialisation
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level text logs to stderr. If GetLogger is called
// before Init, the default logger is created lazily.
//
// # Context helpers
//
//	log := logging.WithScan(scanID, "idx_vectors") // adds scan_id and index fields
//	log := logging.WithStore("vectors.dat")       // adds store field
//	log := logging.WithComponent("btree")         // adds component field
package logging

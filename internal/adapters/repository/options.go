package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithHistory sets how many run reports are retained. Only the latest run
// keeps its drive and team data.
func WithHistory(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.history = n
		}
	}
}

// PostgresOption applies a configuration option to the PostgresSink.
type PostgresOption func(*PostgresSink)

// WithMaxOpenConns sets the pool size.
func WithMaxOpenConns(n int) PostgresOption {
	return func(p *PostgresSink) {
		if n > 0 {
			p.maxOpen = n
		}
	}
}

// WithConnMaxLifetime bounds how long a pooled connection is reused.
func WithConnMaxLifetime(d time.Duration) PostgresOption {
	return func(p *PostgresSink) {
		if d > 0 {
			p.maxLifetime = d
		}
	}
}

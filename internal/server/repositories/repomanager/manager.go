// Package repomanager opens the identity store named by the configured URI
// and hands out repositories bound to it.
package repomanager

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/scams/internal/server/repositories/identities"
)

// RepositoryManager owns a store connection for the life of the process.
//
//   - Prepare applies schema migrations or index definitions.
//   - Identities returns the credential store.
//   - Ping reports whether the store is reachable.
//   - Close releases the connection.
type RepositoryManager interface {
	Prepare(ctx context.Context) error
	Identities() identities.Repository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open picks a backend from the URI scheme:
//
//	mongodb://, mongodb+srv://   MongoDB
//	postgres://, postgresql://   PostgreSQL via pgx
//	memory://                    process memory
func Open(ctx context.Context, uri string) (RepositoryManager, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid database uri: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return NewMongoRepositoryManager(ctx, uri)
	case "postgres", "postgresql":
		return NewPostgresRepositoryManager(uri)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

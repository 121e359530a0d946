// Package metadata stores small key/value settings of the CLI in the local
// SQLite database. The session token lives here between runs.
package metadata

import "context"

type Repository interface {
	// Get returns ok == false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

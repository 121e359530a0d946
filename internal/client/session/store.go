package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/dbx"
)

// Store persists the session token, and the identity it belongs to,
// between runs of the CLI.
type Store interface {
	// Load returns an empty token when nothing is stored. The identity may
	// be nil even when a token is present.
	Load(ctx context.Context) (token string, identity *models.Identity, err error)
	Save(ctx context.Context, token string, identity models.Identity) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the session in the metadata table of the local
// database under common.SessionTokenKey and common.SessionIdentityKey.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context) (string, *models.Identity, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	token, ok, err := repo.Get(ctx, common.SessionTokenKey)
	if err != nil {
		return "", nil, err
	}
	if !ok || token == "" {
		return "", nil, nil
	}

	raw, ok, err := repo.Get(ctx, common.SessionIdentityKey)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return token, nil, nil
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		// A damaged identity is refreshed from the server on resolve.
		return token, nil, nil
	}
	return token, &id, nil
}

// Save writes the token and identity in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, token string, identity models.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionTokenKey, token); err != nil {
			return err
		}
		return repo.Set(ctx, common.SessionIdentityKey, string(raw))
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.SessionTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.SessionIdentityKey)
	})
}

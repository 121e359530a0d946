package repomanager

import (
	"context"

	"github.com/dmitrijs2005/scams/internal/server/repositories/identities"
)

// MemoryRepositoryManager keeps everything in process memory. Nothing
// survives a restart.
type MemoryRepositoryManager struct {
	repo *identities.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: identities.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Prepare(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Identities() identities.Repository { return m.repo }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }

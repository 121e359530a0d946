package identities

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/dmitrijs2005/scams/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps identities in process memory. Values are copied in
// and out so callers never share state with the store.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.Identity
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]models.Identity),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, identity *models.Identity) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[identity.Email]; taken {
		return nil, common.ErrorDuplicateKey
	}

	identity.ID = uuid.NewString()
	r.byID[identity.ID] = clone(identity)
	r.byEmail[identity.Email] = identity.ID
	return identity, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	i := clone(ptr(r.byID[id]))
	return &i, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	i := clone(&stored)
	return &i, nil
}

func (r *MemoryRepository) RecordLogin(_ context.Context, id string, at time.Time) error {
	return r.modify(id, func(i *models.Identity) bool {
		i.MarkLogin(at)
		return true
	})
}

func (r *MemoryRepository) SetResetToken(_ context.Context, id, token string, expires, at time.Time) error {
	return r.modify(id, func(i *models.Identity) bool {
		i.SetResetToken(token, expires, at)
		return true
	})
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id, digest string, at time.Time) error {
	return r.modify(id, func(i *models.Identity) bool {
		i.ReplaceDigest(digest, at)
		return true
	})
}

func (r *MemoryRepository) ConsumeResetToken(_ context.Context, id, token, digest string, now time.Time) error {
	return r.modify(id, func(i *models.Identity) bool {
		if !i.ResetTokenMatches(token, now) {
			return false
		}
		i.ReplaceDigest(digest, now)
		i.ClearResetToken(now)
		return true
	})
}

// modify applies fn to the stored identity under the write lock. fn reports
// whether the change applies; when it does not the record is left as is and
// common.ErrorNotFound is returned.
func (r *MemoryRepository) modify(id string, fn func(*models.Identity) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if !fn(&stored) {
		return common.ErrorNotFound
	}
	r.byID[id] = stored
	return nil
}

func (r *MemoryRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, i := range r.byID {
		if i.ResetPasswordExpires != nil && i.ResetPasswordExpires.Before(now) {
			i.ClearResetToken(now)
			r.byID[id] = i
			n++
		}
	}
	return n, nil
}

func ptr(i models.Identity) *models.Identity { return &i }

func clone(i *models.Identity) models.Identity {
	c := *i
	if i.LastLogin != nil {
		t := *i.LastLogin
		c.LastLogin = &t
	}
	if i.ResetPasswordToken != nil {
		s := *i.ResetPasswordToken
		c.ResetPasswordToken = &s
	}
	if i.ResetPasswordExpires != nil {
		t := *i.ResetPasswordExpires
		c.ResetPasswordExpires = &t
	}
	return c
}

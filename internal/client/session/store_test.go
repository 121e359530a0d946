package session

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/scams/internal/client/client"
	"github.com/dmitrijs2005/scams/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "scams.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewSQLiteStore(openDB(t))

	token, id, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, id)

	require.NoError(t, st.Save(ctx, "tok", jane))

	token, id, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.NotNil(t, id)
	assert.Equal(t, jane, *id)

	require.NoError(t, st.Clear(ctx))
	token, id, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, id)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "scams.db")

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteStore(db).Save(ctx, "tok", jane))
	require.NoError(t, db.Close())

	db, err = client.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	token, id, err := NewSQLiteStore(db).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "Jane Smith", id.Name)
}

func TestSQLiteStore_DamagedIdentity(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	_, err := db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES (?, 'tok'), (?, '{broken')`,
		common.SessionTokenKey, common.SessionIdentityKey)
	require.NoError(t, err)

	token, id, err := NewSQLiteStore(db).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Nil(t, id)
}

func TestSQLiteStore_ClosedDB(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	st := NewSQLiteStore(db)
	require.NoError(t, db.Close())

	_, _, err := st.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, st.Save(ctx, "tok", jane))
	assert.Error(t, st.Clear(ctx))
}

func TestSessionWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	api := &fakeAPI{loginRes: loginAs(jane)}
	s := New(api, NewSQLiteStore(db), nil, nil)
	require.NoError(t, s.Login(ctx, "jane@uni.edu", "secret1"))

	// A new process with the same database resolves to the same user.
	api2 := &fakeAPI{me: profileOf(jane)}
	s2 := New(api2, NewSQLiteStore(db), nil, nil)
	require.NoError(t, s2.Resolve(ctx))
	assert.Equal(t, Authenticated, s2.Snapshot().State)
	assert.Equal(t, []string{"me:tok"}, api2.calls)
}

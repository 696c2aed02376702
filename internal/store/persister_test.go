package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var sampleRecords = []json.RawMessage{
	json.RawMessage(`{"id":"a","owner":"alice","count":1}`),
	json.RawMessage(`{"id":"b","owner":"bob","count":2}`),
}

func assertRoundTrip(t *testing.T, p Persister) {
	t.Helper()

	_, err := p.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, p.Save(sampleRecords))
	got, err := p.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, string(sampleRecords[0]), string(got[0]))
	assert.JSONEq(t, string(sampleRecords[1]), string(got[1]))

	require.NoError(t, p.Save(sampleRecords[1:]))
	got, err = p.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, string(sampleRecords[1]), string(got[0]))
}

func TestFilePersister_RoundTrip(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "nested", "models.json"))
	assertRoundTrip(t, p)
}

func TestFilePersister_WritesIndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	p := NewFilePersister(path)

	require.NoError(t, p.Save([]json.RawMessage{json.RawMessage(`{"id":"a"}`)}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": \"a\"\n  }\n]", string(data))

	require.NoError(t, p.Save(nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	got, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilePersister_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFilePersister(path).Load()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}

func TestFilePersister_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(filepath.Join(dir, "tx.json"))
	require.NoError(t, p.Save(sampleRecords))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tx.json", entries[0].Name())
}

func TestBadgerPersister_RoundTrip(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	assertRoundTrip(t, NewBadgerPersister(db, "models"))
}

func TestBadgerPersister_CollectionsAreIsolated(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	models := NewBadgerPersister(db, "models")
	txs := NewBadgerPersister(db, "transactions")
	require.NoError(t, models.Save(sampleRecords))

	_, err = txs.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&SQLRecord{}))
	return db
}

func TestSQLPersister_RoundTrip(t *testing.T) {
	assertRoundTrip(t, NewSQLPersister(openSQLite(t), "models", "id"))
}

func TestSQLPersister_IndexesRecordID(t *testing.T) {
	db := openSQLite(t)
	p := NewSQLPersister(db, "models", "id")
	require.NoError(t, p.Save(sampleRecords))

	var row SQLRecord
	require.NoError(t, db.Where("collection = ? AND record_id = ?", "models", "b").First(&row).Error)
	assert.Equal(t, 1, row.Position)

	other := NewSQLPersister(db, "transactions", "id")
	_, err := other.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestStore_WithFilePersister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	s := New[item]("items", itemKey, NewFilePersister(path))
	require.NoError(t, s.Load())
	require.NoError(t, s.Insert(item{ID: "x", Owner: "o"}))

	reopened := New[item]("items", itemKey, NewFilePersister(path))
	require.NoError(t, reopened.Load())
	got, ok := reopened.Get("x")
	assert.True(t, ok)
	assert.Equal(t, "o", got.Owner)
}

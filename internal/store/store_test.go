package store

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

func itemKey(i item) string { return i.ID }

// memPersister records every snapshot it is asked to save.
type memPersister struct {
	snapshot []json.RawMessage
	saves    int
	failSave error
	failLoad error
}

func (p *memPersister) Load() ([]json.RawMessage, error) {
	if p.failLoad != nil {
		return nil, p.failLoad
	}
	if p.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return p.snapshot, nil
}

func (p *memPersister) Save(records []json.RawMessage) error {
	if p.failSave != nil {
		return p.failSave
	}
	p.saves++
	p.snapshot = records
	return nil
}

func (p *memPersister) Close() error { return nil }

func newItemStore(t *testing.T) (*Store[item], *memPersister) {
	t.Helper()
	p := &memPersister{}
	s := New[item]("items", itemKey, p)
	require.NoError(t, s.Load())
	return s, p
}

func TestStore_LoadMissingSnapshotIsEmpty(t *testing.T) {
	s, _ := newItemStore(t)
	assert.True(t, s.Loaded())
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.All())
	assert.Empty(t, s.All())
}

func TestStore_LoadCorruptRecord(t *testing.T) {
	p := &memPersister{snapshot: []json.RawMessage{json.RawMessage(`{"id":5}`)}}
	s := New[item]("items", itemKey, p)

	err := s.Load()
	assert.Error(t, err)
	assert.False(t, s.Loaded())
}

func TestStore_LoadPersisterError(t *testing.T) {
	p := &memPersister{failLoad: errors.New("disk gone")}
	s := New[item]("items", itemKey, p)
	assert.ErrorContains(t, s.Load(), "disk gone")
}

func TestStore_LoadDuplicateKeepsFirstPositionLastValue(t *testing.T) {
	p := &memPersister{snapshot: []json.RawMessage{
		json.RawMessage(`{"id":"a","count":1}`),
		json.RawMessage(`{"id":"b","count":2}`),
		json.RawMessage(`{"id":"a","count":3}`),
	}}
	s := New[item]("items", itemKey, p)
	require.NoError(t, s.Load())

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, 3, all[0].Count)
	assert.Equal(t, "b", all[1].ID)
}

func TestStore_InsertAndGet(t *testing.T) {
	s, p := newItemStore(t)

	require.NoError(t, s.Insert(item{ID: "a", Owner: "alice"}))
	require.NoError(t, s.Insert(item{ID: "b", Owner: "bob"}))

	got, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "alice", got.Owner)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, p.saves)
	require.Len(t, p.snapshot, 2)
	assert.JSONEq(t, `{"id":"a","owner":"alice","count":0}`, string(p.snapshot[0]))
}

func TestStore_InsertDuplicate(t *testing.T) {
	s, p := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "a"}))

	err := s.Insert(item{ID: "a", Owner: "other"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, p.saves)
}

func TestStore_InsertRollsBackOnSaveFailure(t *testing.T) {
	s, p := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "a"}))

	p.failSave = errors.New("write failed")
	err := s.Insert(item{ID: "b"})
	assert.ErrorContains(t, err, "write failed")

	_, ok := s.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	p.failSave = nil
	assert.NoError(t, s.Insert(item{ID: "b"}))
}

func TestStore_FindReturnsFirstInInsertionOrder(t *testing.T) {
	s, _ := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "z", Owner: "alice", Count: 1}))
	require.NoError(t, s.Insert(item{ID: "a", Owner: "alice", Count: 2}))

	got, ok := s.Find(func(i item) bool { return i.Owner == "alice" })
	assert.True(t, ok)
	assert.Equal(t, "z", got.ID)

	_, ok = s.Find(func(i item) bool { return i.Owner == "carol" })
	assert.False(t, ok)
}

func TestStore_Filter(t *testing.T) {
	s, _ := newItemStore(t)
	for _, it := range []item{
		{ID: "1", Owner: "alice"},
		{ID: "2", Owner: "bob"},
		{ID: "3", Owner: "alice"},
	} {
		require.NoError(t, s.Insert(it))
	}

	got := s.Filter(func(i item) bool { return i.Owner == "alice" })
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	none := s.Filter(func(i item) bool { return false })
	assert.NotNil(t, none)
	assert.Len(t, none, 0)
}

func TestStore_Update(t *testing.T) {
	s, p := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "a", Count: 1}))

	next, found, err := s.Update("a", func(cur item) (item, error) {
		cur.Count++
		return cur, nil
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, next.Count)

	got, _ := s.Get("a")
	assert.Equal(t, 2, got.Count)
	assert.JSONEq(t, `{"id":"a","owner":"","count":2}`, string(p.snapshot[0]))
}

func TestStore_UpdateMissing(t *testing.T) {
	s, p := newItemStore(t)

	_, found, err := s.Update("nope", func(cur item) (item, error) {
		t.Fatal("mutate must not run for a missing record")
		return cur, nil
	})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, p.saves)
}

func TestStore_UpdateRejectsKeyChange(t *testing.T) {
	s, _ := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "a"}))

	_, found, err := s.Update("a", func(cur item) (item, error) {
		cur.ID = "b"
		return cur, nil
	})
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrKeyChanged)

	_, ok := s.Get("a")
	assert.True(t, ok)
}

func TestStore_UpdateMutateError(t *testing.T) {
	s, p := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "a", Count: 1}))
	boom := errors.New("boom")

	_, found, err := s.Update("a", func(cur item) (item, error) {
		return cur, boom
	})
	assert.True(t, found)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.saves)
}

func TestStore_UpdateRollsBackOnSaveFailure(t *testing.T) {
	s, p := newItemStore(t)
	require.NoError(t, s.Insert(item{ID: "a", Count: 1}))
	p.failSave = errors.New("write failed")

	_, found, err := s.Update("a", func(cur item) (item, error) {
		cur.Count = 99
		return cur, nil
	})
	assert.True(t, found)
	assert.Error(t, err)

	got, _ := s.Get("a")
	assert.Equal(t, 1, got.Count)
}

func TestStore_Delete(t *testing.T) {
	s, p := newItemStore(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(item{ID: id}))
	}

	removed, err := s.Delete("b")
	require.NoError(t, err)
	assert.True(t, removed)

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[1].ID)
	assert.Len(t, p.snapshot, 2)

	removed, err = s.Delete("b")
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_DeleteRollsBackOnSaveFailure(t *testing.T) {
	s, p := newItemStore(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(item{ID: id}))
	}
	p.failSave = errors.New("write failed")

	removed, err := s.Delete("b")
	assert.Error(t, err)
	assert.False(t, removed)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[1].ID)
}

func TestStore_ReloadRestoresOrder(t *testing.T) {
	s, p := newItemStore(t)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Insert(item{ID: id}))
	}

	reloaded := New[item]("items", itemKey, p)
	require.NoError(t, reloaded.Load())

	var ids []string
	for _, it := range reloaded.All() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewID("model", now)

	assert.Regexp(t, regexp.MustCompile(`^model_1700000000123_[0-9a-z]{9}$`), id)
	assert.NotEqual(t, id, NewID("model", now))
}

func TestMerge(t *testing.T) {
	cur := item{ID: "a", Owner: "alice", Count: 1}

	t.Run("overlays fields", func(t *testing.T) {
		next, err := Merge(cur, map[string]json.RawMessage{
			"count": json.RawMessage(`5`),
		})
		require.NoError(t, err)
		assert.Equal(t, item{ID: "a", Owner: "alice", Count: 5}, next)
	})

	t.Run("ignores protected keys", func(t *testing.T) {
		next, err := Merge(cur, map[string]json.RawMessage{
			"id":    json.RawMessage(`"b"`),
			"owner": json.RawMessage(`"bob"`),
		}, "id")
		require.NoError(t, err)
		assert.Equal(t, "a", next.ID)
		assert.Equal(t, "bob", next.Owner)
	})

	t.Run("ignores unknown keys", func(t *testing.T) {
		next, err := Merge(cur, map[string]json.RawMessage{
			"color": json.RawMessage(`"red"`),
		})
		require.NoError(t, err)
		assert.Equal(t, cur, next)
	})

	t.Run("rejects mistyped values", func(t *testing.T) {
		next, err := Merge(cur, map[string]json.RawMessage{
			"count": json.RawMessage(`"many"`),
		})
		assert.ErrorIs(t, err, ErrInvalidPatch)
		assert.Equal(t, cur, next)
	})
}

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/testutils"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	table := testutils.UsersTable(t)
	s := New()
	require.NoError(t, s.CreateTable(table))
	for i := int64(0); i < 50; i++ {
		require.NoError(t, s.Insert(table, map[string]codec.Value{
			"id":   codec.Int(i),
			"name": codec.String("user\x00" + string(rune('a'+i%26))),
			"age":  codec.Int(20 + i%7),
		}))
	}
	require.NoError(t, s.CreateIndex("empty.primary"))

	path := filepath.Join(t.TempDir(), "users.snap")
	require.NoError(t, WriteSnapshot(path, s))

	loaded, err := OpenSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, s.Indexes(), loaded.Indexes())

	for _, index := range s.Indexes() {
		want, err := s.Count(index)
		require.NoError(t, err)
		got, err := loaded.Count(index)
		require.NoError(t, err)
		require.Equal(t, want, got, index)
	}

	pk, row, err := EncodeRow(table, map[string]codec.Value{
		"id": codec.Int(3), "name": codec.String("user\x00d"), "age": codec.Int(23),
	})
	require.NoError(t, err)
	got, ok, err := loaded.Get(table.PrimaryIndexID(), pk)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, row, got)
}

func TestSnapshot_Corrupt(t *testing.T) {
	dir := t.TempDir()

	t.Run("short file", func(t *testing.T) {
		path := filepath.Join(dir, "short.snap")
		require.NoError(t, os.WriteFile(path, []byte("NQ"), 0o644))
		_, err := OpenSnapshot(path)
		require.ErrorIs(t, err, ErrSnapshotCorrupt)
	})

	t.Run("bad magic", func(t *testing.T) {
		path := filepath.Join(dir, "magic.snap")
		require.NoError(t, os.WriteFile(path, []byte("XXXX\x01\x00"), 0o644))
		_, err := OpenSnapshot(path)
		require.ErrorIs(t, err, ErrSnapshotCorrupt)
	})

	t.Run("flipped byte", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Put("t.primary", []byte("key"), []byte("value")))
		path := filepath.Join(dir, "flipped.snap")
		require.NoError(t, WriteSnapshot(path, s))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[len(data)-1] ^= 0xFF
		require.NoError(t, os.WriteFile(path, data, 0o644))

		_, err = OpenSnapshot(path)
		require.ErrorIs(t, err, ErrSnapshotCorrupt)
	})

	t.Run("truncated entry", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Put("t.primary", []byte("key"), []byte("value")))
		path := filepath.Join(dir, "truncated.snap")
		require.NoError(t, WriteSnapshot(path, s))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data[:len(data)-2], 0o644))

		_, err = OpenSnapshot(path)
		require.ErrorIs(t, err, ErrSnapshotCorrupt)
	})
}

func TestSnapshot_Locked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.snap")
	s := New()
	require.NoError(t, s.Put("t.primary", []byte("key"), []byte("value")))
	require.NoError(t, WriteSnapshot(path, s))

	lock := flock.New(path + lockSuffix)
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer lock.Unlock()

	_, err = OpenSnapshot(path)
	require.ErrorIs(t, err, ErrSnapshotLocked)
}

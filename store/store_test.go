package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autoschema "github.com/reoring/autoschema"
)

const userDoc = `{
	"type": "object",
	"title": "User",
	"properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
	"required": ["name"]
}`

// setupRedisStore creates a miniredis instance and returns a connected RedisStore.
func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s, err := NewRedisStore(RedisOptions{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		TTL:            ttl,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		mr.Close()
	})
	return s, mr
}

func stores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "schemas"))
	require.NoError(t, err)
	rs, _ := setupRedisStore(t, 0)
	return map[string]Store{"file": fs, "redis": rs, "etcd": NewEtcdStoreWithKV(newMemKV(), "")}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "user")
			assert.ErrorIs(t, err, autoschema.ErrSchemaNotFound)

			require.NoError(t, s.Put(ctx, "user", []byte(userDoc)))
			require.NoError(t, s.Put(ctx, "order", []byte(`{}`)))

			got, err := s.Get(ctx, "user")
			require.NoError(t, err)
			assert.Equal(t, userDoc, string(got))

			require.NoError(t, s.Put(ctx, "user", []byte(`{"v":2}`)))
			got, err = s.Get(ctx, "user")
			require.NoError(t, err)
			assert.Equal(t, `{"v":2}`, string(got))

			keys, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"order", "user"}, keys)

			require.NoError(t, s.Delete(ctx, "order"))
			assert.ErrorIs(t, s.Delete(ctx, "order"), autoschema.ErrSchemaNotFound)

			keys, err = s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"user"}, keys)
		})
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", ".", "..", ".x", ".tmp.json", "a/b", `a\b`} {
				assert.ErrorIs(t, s.Put(ctx, key, []byte(`{}`)), ErrInvalidKey, key)
				_, err := s.Get(ctx, key)
				assert.ErrorIs(t, err, ErrInvalidKey, key)
			}
		})
	}
}

func TestStore_DottedKeysAreListed(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "user.v2", []byte(`{}`)))
			keys, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"user.v2"}, keys)
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			m, err := autoschema.ValidateAndCompile([]byte(userDoc), "")
			require.NoError(t, err)
			require.NoError(t, Save(ctx, s, "user", m))

			loaded, err := Load(ctx, s, "user", "")
			require.NoError(t, err)
			assert.True(t, m.Equal(loaded), "%s != %s", m, loaded)

			_, err = Load(ctx, s, "missing", "")
			assert.ErrorIs(t, err, autoschema.ErrSchemaNotFound)
		})
	}
}

func TestLoad_DistinguishesErrors(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "broken", []byte(`{"type": "object"`)))
	_, err = Load(ctx, s, "broken", "")
	var de *autoschema.DecodeError
	require.True(t, errors.As(err, &de), "got %T", err)
	assert.Equal(t, "broken", de.Source)

	require.NoError(t, s.Put(ctx, "invalid", []byte(`{"type": "object", "properties": {"a": {"type": "string", "format": "uri"}}}`)))
	_, err = Load(ctx, s, "invalid", "")
	ve, ok := autoschema.AsValidationError(err)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, autoschema.CodeUnsupportedFormat, ve.Code)
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp.json"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))
	require.NoError(t, s.Put(context.Background(), "a", []byte(`{}`)))

	keys, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, keys)
}

func TestFileStore_CancelledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "a", []byte(`{}`)), context.Canceled)
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	s, mr := setupRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "user", []byte(userDoc)))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"user"))
	assert.Equal(t, time.Minute, mr.TTL(DefaultRedisPrefix+"user"))

	// keys outside the prefix are not listed
	require.NoError(t, mr.Set("other:key", "x"))
	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, keys)

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "user")
	assert.ErrorIs(t, err, autoschema.ErrSchemaNotFound)
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{URL: "invalid://url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")

	_, err = NewRedisStore(RedisOptions{
		URL:            "redis://localhost:99999",
		ConnectTimeout: 100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDeterministic(t *testing.T) {
	sources := []string{"hash1", "hash2"}
	k1 := Compute(sources, nil, "", "json", "0.1.0")
	k2 := Compute(sources, nil, "", "json", "0.1.0")
	assert.Equal(t, k1.Hash, k2.Hash)
}

func TestComputeChangesWithSource(t *testing.T) {
	k1 := Compute([]string{"source_a"}, nil, "", "json", "0.1.0")
	k2 := Compute([]string{"source_b"}, nil, "", "json", "0.1.0")
	assert.NotEqual(t, k1.Hash, k2.Hash)
}

func TestComputeChangesWithVariant(t *testing.T) {
	sources := []string{"hash1"}
	k1 := Compute(sources, map[string]string{"env": "dev"}, "", "json", "0.1.0")
	k2 := Compute(sources, map[string]string{"env": "prod"}, "", "json", "0.1.0")
	assert.NotEqual(t, k1.Hash, k2.Hash)
}

func TestComputeChangesWithFormat(t *testing.T) {
	sources := []string{"hash1"}
	k1 := Compute(sources, nil, "", "json", "0.1.0")
	k2 := Compute(sources, nil, "", "yaml", "0.1.0")
	assert.NotEqual(t, k1.Hash, k2.Hash)
}

func TestComputeChangesWithArgs(t *testing.T) {
	sources := []string{"hash1"}
	k1 := Compute(sources, nil, "", "json", "0.1.0")
	k2 := Compute(sources, nil, "args_hash", "json", "0.1.0")
	assert.NotEqual(t, k1.Hash, k2.Hash)
}

func TestComputeOrderMatters(t *testing.T) {
	k1 := Compute([]string{"source_a", "source_b"}, nil, "", "json", "0.1.0")
	k2 := Compute([]string{"source_b", "source_a"}, nil, "", "json", "0.1.0")
	assert.NotEqual(t, k1.Hash, k2.Hash, "different source ordering must produce different keys")
}

func TestHashString(t *testing.T) {
	h1 := HashString("hello")
	h2 := HashString("hello")
	h3 := HashString("world")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestStoreMissThenHit(t *testing.T) {
	store := NewStore(t.TempDir())
	key := Compute([]string{"source"}, nil, "", "json", "0.1.0")

	_, ok := store.Get(key)
	assert.False(t, ok)

	entry := NewEntry(`{"key": "value"}`, "json", "test.hone", "0.1.0")
	require.NoError(t, store.Put(key, entry))

	cached, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, `{"key": "value"}`, cached.Output)
	assert.Equal(t, "json", cached.Format)
}

func TestStoreInvalidation(t *testing.T) {
	store := NewStore(t.TempDir())
	key1 := Compute([]string{"source_v1"}, nil, "", "json", "0.1.0")
	key2 := Compute([]string{"source_v2"}, nil, "", "json", "0.1.0")

	require.NoError(t, store.Put(key1, NewEntry("output_v1", "json", "", "0.1.0")))

	_, ok := store.Get(key2)
	assert.False(t, ok)
	_, ok = store.Get(key1)
	assert.True(t, ok)
}

func TestStoreClean(t *testing.T) {
	store := NewStore(t.TempDir())
	for i := 0; i < 5; i++ {
		key := Compute([]string{"source_" + string(rune('0'+i))}, nil, "", "json", "0.1.0")
		require.NoError(t, store.Put(key, NewEntry("output", "json", "", "0.1.0")))
	}

	count, err := store.Clean()
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	key := Compute([]string{"source_0"}, nil, "", "json", "0.1.0")
	_, ok := store.Get(key)
	assert.False(t, ok)
}

func TestStoreCleanOlderThan(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	key := Compute([]string{"source"}, nil, "", "json", "0.1.0")
	require.NoError(t, store.Put(key, NewEntry("output", "json", "", "0.1.0")))

	count, err := store.CleanOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "a freshly written entry is not older than an hour")

	_, ok := store.Get(key)
	assert.True(t, ok)
}

func TestEntryPathShardsByPrefix(t *testing.T) {
	store := NewStore("/cache/root")
	path := store.entryPath("abcd1234")
	assert.Equal(t, filepath.Join("/cache/root", "ab", "abcd1234.json"), path)
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"24h", 24 * time.Hour, true},
		{"30m", 30 * time.Minute, true},
		{"60s", 60 * time.Second, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDuration(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.Equal(t, c.want, got, c.in)
		}
	}
}

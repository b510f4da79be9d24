package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/circleed-client/pkg/errors"
)

type staleCounter map[string]int

func (c staleCounter) ObserveStale(key string) { c[key]++ }

func TestStoreDropsOlderResponse(t *testing.T) {
	stale := staleCounter{}
	store := NewStore(stale, nil)

	first := store.Begin(KeyMarketplace)
	second := store.Begin(KeyMarketplace)

	assert.True(t, store.Commit(KeyMarketplace, second, "newer"))
	assert.False(t, store.Commit(KeyMarketplace, first, "older"))

	value, err := Get[string](store, KeyMarketplace)
	require.NoError(t, err)
	assert.Equal(t, "newer", value)
	assert.Equal(t, 1, stale[KeyMarketplace])
}

func TestStoreUpdateSupersedesInFlightFetch(t *testing.T) {
	store := NewStore(nil, nil)

	seq := store.Begin(KeyChats)
	snap := store.Update(KeyChats, func(current interface{}) interface{} {
		assert.Nil(t, current)
		return []string{"optimistic"}
	})
	assert.Greater(t, snap.Seq, seq)

	assert.False(t, store.Commit(KeyChats, seq, []string{"late"}))
	value, err := Get[[]string](store, KeyChats)
	require.NoError(t, err)
	assert.Equal(t, []string{"optimistic"}, value)
}

func TestStoreMissAndTypeMismatch(t *testing.T) {
	store := NewStore(nil, nil)

	_, err := store.Snapshot(KeyWallet)
	assert.True(t, errors.Is(err, appErrors.ErrStoreMiss))

	store.Commit(KeyWallet, store.Begin(KeyWallet), 42)
	_, err = Get[string](store, KeyWallet)
	assert.True(t, errors.Is(err, appErrors.ErrStoreMiss))
	assert.Equal(t, []string{KeyWallet}, store.Keys())
}

func TestStoreWatch(t *testing.T) {
	store := NewStore(nil, nil)

	var seen []interface{}
	stop := store.Watch(KeyDashboard, func(s Snapshot) { seen = append(seen, s.Value) })

	store.Commit(KeyDashboard, store.Begin(KeyDashboard), "a")
	store.Update(KeyDashboard, func(interface{}) interface{} { return "b" })
	stop()
	store.Commit(KeyDashboard, store.Begin(KeyDashboard), "c")

	assert.Equal(t, []interface{}{"a", "b"}, seen)
}

func TestMessagesKey(t *testing.T) {
	assert.Equal(t, "messages:12", MessagesKey(12))
}

func TestStoreAppliesOlderFetchUntilNewerCommits(t *testing.T) {
	store := NewStore(nil, nil)

	first := store.Begin(KeyWallet)
	second := store.Begin(KeyWallet)

	assert.True(t, store.Commit(KeyWallet, first, "first"))
	assert.True(t, store.Commit(KeyWallet, second, "second"))
	assert.False(t, store.Commit(KeyWallet, first, "first again"))

	value, err := Get[string](store, KeyWallet)
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

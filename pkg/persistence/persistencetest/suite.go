// Package persistencetest holds the behaviour every ITreePersistence backend
// must share, so each backend test only supplies a constructor.
package persistencetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
)

// Factory opens a fresh, empty store for one subtest.
type Factory func(t *testing.T) persistence.ITreePersistence

// Snapshot returns a snapshot with a distinct root derived from seed.
func Snapshot(seed int64) *persistence.TreeSnapshot {
	return &persistence.TreeSnapshot{
		Root:          fmt.Sprintf("0x%064x", seed),
		PreserveOrder: seed%2 == 0,
		HashName:      "keccak256",
		Leaves: []string{
			fmt.Sprintf("0x%064x", seed*10+1),
			fmt.Sprintf("0x%064x", seed*10+2),
		},
		CreatedAt: 1700000000 + seed,
	}
}

// Run exercises the ITreePersistence contract against stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		snapshot := Snapshot(1)
		require.NoError(t, store.SaveTree(snapshot))

		loaded, err := store.LoadTree(snapshot.Root)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, snapshot, loaded)
	})

	t.Run("LoadIsCaseInsensitive", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		snapshot := Snapshot(0xabc)
		require.NoError(t, store.SaveTree(snapshot))

		loaded, err := store.LoadTree("0x" + fmt.Sprintf("%064X", 0xabc))
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, snapshot.Leaves, loaded.Leaves)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadTree(Snapshot(999).Root)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("SaveNil", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		err := store.SaveTree(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil TreeSnapshot")
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		snapshot := Snapshot(2)
		require.NoError(t, store.SaveTree(snapshot))
		snapshot.CreatedAt++
		require.NoError(t, store.SaveTree(snapshot))

		loaded, err := store.LoadTree(snapshot.Root)
		require.NoError(t, err)
		assert.Equal(t, snapshot.CreatedAt, loaded.CreatedAt)

		all, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("NoExternalMutation", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		snapshot := Snapshot(3)
		require.NoError(t, store.SaveTree(snapshot))
		snapshot.Leaves[0] = "0xdead"

		loaded, err := store.LoadTree(snapshot.Root)
		require.NoError(t, err)
		assert.NotEqual(t, "0xdead", loaded.Leaves[0])
	})

	t.Run("ListSorted", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		empty, err := store.ListTrees()
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, seed := range []int64{30, 10, 20} {
			require.NoError(t, store.SaveTree(Snapshot(seed)))
		}

		all, err := store.ListTrees()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, Snapshot(10).Root, all[0].Root)
		assert.Equal(t, Snapshot(20).Root, all[1].Root)
		assert.Equal(t, Snapshot(30).Root, all[2].Root)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		snapshot := Snapshot(4)
		require.NoError(t, store.SaveTree(snapshot))
		require.NoError(t, store.DeleteTree(snapshot.Root))

		loaded, err := store.LoadTree(snapshot.Root)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// idempotent
		require.NoError(t, store.DeleteTree(snapshot.Root))

		all, err := store.ListTrees()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Concurrent", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := int64(0); i < 20; i++ {
			wg.Add(1)
			go func(seed int64) {
				defer wg.Done()
				if err := store.SaveTree(Snapshot(100 + seed)); err != nil {
					errs <- err
					return
				}
				if _, err := store.LoadTree(Snapshot(100 + seed).Root); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		all, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, all, 20)
	})

	t.Run("HealthCheckAndClose", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())

		require.NoError(t, store.Close())
		require.NoError(t, store.Close()) // idempotent

		require.Error(t, store.HealthCheck())
		require.Error(t, store.SaveTree(Snapshot(5)))
		_, err := store.LoadTree(Snapshot(5).Root)
		require.Error(t, err)
		_, err = store.ListTrees()
		require.Error(t, err)
		require.Error(t, store.DeleteTree(Snapshot(5).Root))
	})
}

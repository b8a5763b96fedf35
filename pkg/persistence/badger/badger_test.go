package badger

import (
	"testing"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Layr-Labs/merkle-proof-go/pkg/logger"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/persistencetest"
)

var _ persistence.ITreePersistence = (*BadgerPersistence)(nil)

func TestBadgerPersistence(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.ITreePersistence {
		testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
		bp, err := NewBadgerPersistence(t.TempDir(), testLogger)
		require.NoError(t, err)
		return bp
	})
}

func TestBadgerPersistence_SurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()
	testLogger := zap.NewNop()

	bp, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	snapshot := persistencetest.Snapshot(7)
	require.NoError(t, bp.SaveTree(snapshot))
	require.NoError(t, bp.Close())

	reopened, err := NewBadgerPersistence(tmpDir, testLogger)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadTree(snapshot.Root)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)
}

func TestBadgerPersistence_RejectsUnknownSchema(t *testing.T) {
	tmpDir := t.TempDir()

	bp, err := NewBadgerPersistence(tmpDir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keySchemaVersion), []byte("v0"))
	}))
	require.NoError(t, bp.Close())

	_, err = NewBadgerPersistence(tmpDir, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}

func TestBadgerPersistence_ListSkipsCorruptEntries(t *testing.T) {
	core, observed := observer.New(zap.WarnLevel)
	bp, err := NewBadgerPersistence(t.TempDir(), zap.New(core))
	require.NoError(t, err)
	defer func() { _ = bp.Close() }()

	require.NoError(t, bp.SaveTree(persistencetest.Snapshot(1)))
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(treeKey("0xbroken"), []byte("{not json"))
	}))

	all, err := bp.ListTrees()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1, observed.FilterMessage("Failed to unmarshal TreeSnapshot, skipping").Len())
}

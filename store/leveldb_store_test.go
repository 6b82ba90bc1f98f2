package store

import (
	"fmt"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"

	"github.com/pageseeder/webcache-common/estimate"
)

func TestLevelDBStore(t *testing.T) {
	t.Run("test LevelDBStoreRoundTrip", testLevelDBStoreRoundTrip)
	t.Run("test LevelDBStoreReopen", testLevelDBStoreReopen)
	t.Run("test LevelDBStoreDelete", testLevelDBStoreDelete)
	t.Run("test LevelDBStoreEstimator", testLevelDBStoreEstimator)
}

func testLevelDBStoreRoundTrip(t *testing.T) {
	levelDBStore, err := NewLevelDBStore(xid.New().String(), t.TempDir())
	assert.NoError(t, err)
	defer levelDBStore.Release()

	original := makeTestResource(t, "<html>home</html>")
	err = levelDBStore.CreateEntry("/home", original)
	assert.NoError(t, err)

	assert.True(t, levelDBStore.HasEntry("/home"))
	assert.Equal(t, 1, levelDBStore.GetTotalEntries())

	restored, err := levelDBStore.GetEntry("/home")
	assert.NoError(t, err)
	assert.NotNil(t, restored)

	body, err := restored.GetUngzippedBody()
	assert.NoError(t, err)
	assert.Equal(t, []byte("<html>home</html>"), body)

	missing, err := levelDBStore.GetEntry("/absent")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func testLevelDBStoreReopen(t *testing.T) {
	dbPath := t.TempDir()
	name := xid.New().String()

	levelDBStore, err := NewLevelDBStore(name, dbPath)
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		err = levelDBStore.CreateEntry(fmt.Sprintf("/page/%d", i), makeTestResource(t, "<html>page</html>"))
		assert.NoError(t, err)
	}

	sizeBefore, err := levelDBStore.GetPersistedSize()
	assert.NoError(t, err)
	assert.Greater(t, sizeBefore, int64(0))

	levelDBStore.Release()

	// the size index is rebuilt from the stored metadata
	reopened, err := NewLevelDBStore(name, dbPath)
	assert.NoError(t, err)
	defer reopened.Release()

	assert.Equal(t, 3, reopened.GetTotalEntries())

	sizeAfter, err := reopened.GetPersistedSize()
	assert.NoError(t, err)
	assert.Equal(t, sizeBefore, sizeAfter)

	restored, err := reopened.GetEntry("/page/1")
	assert.NoError(t, err)
	assert.NotNil(t, restored)
}

func testLevelDBStoreDelete(t *testing.T) {
	levelDBStore, err := NewLevelDBStore(xid.New().String(), t.TempDir())
	assert.NoError(t, err)
	defer levelDBStore.Release()

	err = levelDBStore.CreateEntry("/home", makeTestResource(t, "<html>home</html>"))
	assert.NoError(t, err)
	err = levelDBStore.CreateEntry("/about", makeTestResource(t, "<html>about</html>"))
	assert.NoError(t, err)

	levelDBStore.DeleteEntry("/home")
	assert.False(t, levelDBStore.HasEntry("/home"))
	assert.True(t, levelDBStore.HasEntry("/about"))

	levelDBStore.DeleteAllEntries()
	assert.Equal(t, 0, levelDBStore.GetTotalEntries())

	size, err := levelDBStore.GetPersistedSize()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func testLevelDBStoreEstimator(t *testing.T) {
	levelDBStore, err := NewLevelDBStore(xid.New().String(), t.TempDir())
	assert.NoError(t, err)
	defer levelDBStore.Release()

	for i := 0; i < 4; i++ {
		err = levelDBStore.CreateEntry(fmt.Sprintf("/page/%d", i), makeTestResource(t, "<html>page</html>"))
		assert.NoError(t, err)
	}

	exactSize, err := levelDBStore.GetPersistedSize()
	assert.NoError(t, err)

	// the store satisfies the estimator's persisted cache view, and the
	// first sample returns the exact reported size
	estimator := estimate.NewSizeEstimator()
	assert.Equal(t, exactSize, estimator.GetPersistedSize(levelDBStore))
}

package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/internal/segment"
	"github.com/ignitedb/vlog/pkg/logger"
	"github.com/ignitedb/vlog/pkg/options"
)

type fakeIndex struct {
	handles map[string]contracts.ValueHandle
}

func newFakeIndex() *fakeIndex { return &fakeIndex{handles: map[string]contracts.ValueHandle{}} }

func (f *fakeIndex) Get(key []byte) (contracts.ValueHandle, bool, error) {
	h, ok := f.handles[string(key)]
	return h, ok, nil
}

func (f *fakeIndex) set(key string, h contracts.ValueHandle) { f.handles[key] = h }

func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "segments"), 0755))
	return dir
}

func TestCreateNewThenRegister(t *testing.T) {
	dir := setupDataDir(t)
	log := logger.Noop()

	m, err := CreateNew(dir, "segments", log)
	require.NoError(t, err)
	require.Zero(t, m.Len())

	mw, err := segment.NewMultiWriter(filepath.Join(dir, "segments"), options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), log)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, mw.Write([]byte(k), []byte(k)))
	}

	require.NoError(t, m.Register(mw))
	require.Equal(t, 1, m.Len())
	require.Zero(t, m.StaleRatio())

	ids := m.ListSegmentIDs()
	require.Len(t, ids, 1)

	seg, ok := m.GetSegment(ids[0])
	require.True(t, ok)
	require.EqualValues(t, 5, seg.ItemCount())
}

func TestRecoverDiscardsOrphans(t *testing.T) {
	dir := setupDataDir(t)
	log := logger.Noop()

	m, err := CreateNew(dir, "segments", log)
	require.NoError(t, err)

	mw, err := segment.NewMultiWriter(filepath.Join(dir, "segments"), options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), log)
	require.NoError(t, err)
	require.NoError(t, mw.Write([]byte("k"), []byte("v")))
	require.NoError(t, m.Register(mw))

	orphanDir := filepath.Join(dir, "segments", "999")
	require.NoError(t, os.MkdirAll(orphanDir, 0755))

	recovered, err := Recover(dir, "segments", log)
	require.NoError(t, err)
	require.Equal(t, 1, recovered.Len())

	_, statErr := os.Stat(orphanDir)
	require.True(t, os.IsNotExist(statErr))
}

func TestDropSegments(t *testing.T) {
	dir := setupDataDir(t)
	log := logger.Noop()

	m, err := CreateNew(dir, "segments", log)
	require.NoError(t, err)

	mw, err := segment.NewMultiWriter(filepath.Join(dir, "segments"), options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), log)
	require.NoError(t, err)
	require.NoError(t, mw.Write([]byte("k"), []byte("v")))
	require.NoError(t, m.Register(mw))

	ids := m.ListSegmentIDs()
	require.NoError(t, m.DropSegments(ids))
	require.Zero(t, m.Len())
}

func TestScanForStatsWorstCaseSpaceAmp(t *testing.T) {
	dir := setupDataDir(t)
	log := logger.Noop()
	segmentsFolder := filepath.Join(dir, "segments")

	m, err := CreateNew(dir, "segments", log)
	require.NoError(t, err)

	index := newFakeIndex()

	for i := 1; i <= 10; i++ {
		mw, err := segment.NewMultiWriter(segmentsFolder, options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), log)
		require.NoError(t, err)

		handle := mw.Handle([]byte("key"))
		require.NoError(t, mw.Write([]byte("key"), []byte("value")))
		require.NoError(t, m.Register(mw))

		index.set("key", handle)
		require.NoError(t, m.ScanForStats(index))

		spaceAmp := m.SpaceAmp()
		require.InDelta(t, float64(i), spaceAmp, 0.001)
	}
}

func TestScanForStatsNoOverlap(t *testing.T) {
	dir := setupDataDir(t)
	log := logger.Noop()
	segmentsFolder := filepath.Join(dir, "segments")

	m, err := CreateNew(dir, "segments", log)
	require.NoError(t, err)

	index := newFakeIndex()

	for i := 0; i < 20; i++ {
		mw, err := segment.NewMultiWriter(segmentsFolder, options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), log)
		require.NoError(t, err)

		key := string(rune('a' + i%26))
		handle := mw.Handle([]byte(key))
		require.NoError(t, mw.Write([]byte(key), []byte("v")))
		require.NoError(t, m.Register(mw))

		index.set(key, handle)
		require.NoError(t, m.ScanForStats(index))

		require.InDelta(t, 1.0, m.SpaceAmp(), 0.001)
		require.InDelta(t, 0.0, m.StaleRatio(), 0.001)
	}
}

package compaction

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/internal/manifest"
	"github.com/ignitedb/vlog/internal/segment"
	"github.com/ignitedb/vlog/pkg/logger"
	"github.com/ignitedb/vlog/pkg/memindex"
	"github.com/ignitedb/vlog/pkg/options"
)

func setupManifest(t *testing.T) (*manifest.Manifest, string) {
	t.Helper()
	dir := t.TempDir()
	segmentsFolder := filepath.Join(dir, "segments")
	require.NoError(t, os.MkdirAll(segmentsFolder, 0755))

	m, err := manifest.CreateNew(dir, "segments", logger.Noop())
	require.NoError(t, err)
	return m, segmentsFolder
}

func writeSegment(t *testing.T, m *manifest.Manifest, segmentsFolder string, idx *memindex.Index, keys []string) {
	t.Helper()
	mw, err := segment.NewMultiWriter(segmentsFolder, options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), logger.Noop())
	require.NoError(t, err)

	for _, k := range keys {
		handle := mw.Handle([]byte(k))
		require.NoError(t, mw.Write([]byte(k), []byte(k)))
		idx.Set([]byte(k), handle, uint64(len(k)))
	}

	require.NoError(t, m.Register(mw))
}

func TestRolloverIndexFinishFails(t *testing.T) {
	m, segmentsFolder := setupManifest(t)
	idx := memindex.New()

	writeSegment(t, m, segmentsFolder, idx, []string{"a", "b", "c", "d", "e"})

	ids := m.ListSegmentIDs()
	require.Len(t, ids, 1)

	exec := New(m, segmentsFolder, options.DefaultSegmentSize, options.CompressionNone, 0, logger.Noop())

	w := idx.Writer()
	injected := stdErrors.New("index finish failed")
	w.FailFinishWith(injected)

	err := exec.Rollover(ids, idx, w)
	require.ErrorIs(t, err, injected)

	// (ii) manifest lists both the original segment and the new one.
	registeredIDs := m.ListSegmentIDs()
	require.Len(t, registeredIDs, 2)
	require.Contains(t, registeredIDs, ids[0])

	// (iii) scan_for_stats against the same index the failed writer wrote
	// through marks the source segment fully stale.
	require.NoError(t, m.ScanForStats(idx))
	sourceSeg, ok := m.GetSegment(ids[0])
	require.True(t, ok)
	require.True(t, sourceSeg.IsFullyStale())

	// (iv) drop_stale_segments (modeled here directly) leaves only the new
	// segment registered.
	var stale []uint64
	for _, seg := range m.ListSegments() {
		if seg.IsFullyStale() {
			stale = append(stale, seg.ID)
		}
	}
	require.NoError(t, m.DropSegments(stale))
	require.Equal(t, 1, m.Len())

	remaining := m.ListSegmentIDs()
	require.NotEqual(t, ids[0], remaining[0])
}

func TestRolloverSuccessRewritesLiveBlobs(t *testing.T) {
	m, segmentsFolder := setupManifest(t)
	idx := memindex.New()

	writeSegment(t, m, segmentsFolder, idx, []string{"a", "b", "c"})
	sourceIDs := m.ListSegmentIDs()

	exec := New(m, segmentsFolder, options.DefaultSegmentSize, options.CompressionNone, 0, logger.Noop())
	w := idx.Writer()

	require.NoError(t, exec.Rollover(sourceIDs, idx, w))

	require.NoError(t, m.ScanForStats(idx))
	for _, id := range sourceIDs {
		seg, ok := m.GetSegment(id)
		require.True(t, ok)
		require.True(t, seg.IsFullyStale())
	}

	handle, ok, err := idx.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotContains(t, sourceIDs, handle.SegmentID)
}

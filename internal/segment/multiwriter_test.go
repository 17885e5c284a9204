package segment

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/pkg/logger"
	"github.com/ignitedb/vlog/pkg/options"
)

func TestMultiWriterBasicKV(t *testing.T) {
	dir := t.TempDir()
	ids := NewIDAllocator(0)

	mw, err := NewMultiWriter(dir, options.DefaultSegmentSize, options.CompressionNone, 0, ids, logger.Noop())
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		value := bytes.Repeat([]byte(k), 1000)
		require.NoError(t, mw.Write([]byte(k), value))
	}

	sealed, err := mw.Finish()
	require.NoError(t, err)
	require.Len(t, sealed, 1)
	require.EqualValues(t, 5, sealed[0].ItemCount())
}

func TestMultiWriterRollsOverOnSize(t *testing.T) {
	dir := t.TempDir()
	ids := NewIDAllocator(0)

	// A tiny target forces a rollover every few writes (16-byte records
	// after a 5-byte header reach 64 bytes on every fourth write).
	mw, err := NewMultiWriter(dir, 64, options.CompressionNone, 0, ids, logger.Noop())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, mw.Write([]byte("key"), []byte("value")))
	}

	sealed, err := mw.Finish()
	require.NoError(t, err)
	require.Greater(t, len(sealed), 1)

	seen := map[uint64]bool{}
	for _, s := range sealed {
		require.False(t, seen[s.ID], "segment ids must be unique")
		seen[s.ID] = true
	}
}

func TestIDAllocatorMonotonic(t *testing.T) {
	ids := NewIDAllocator(5)
	require.EqualValues(t, 5, ids.Next())
	require.EqualValues(t, 6, ids.Next())
	require.EqualValues(t, 7, ids.Next())
}

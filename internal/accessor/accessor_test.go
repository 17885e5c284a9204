package accessor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/internal/manifest"
	"github.com/ignitedb/vlog/internal/segment"
	"github.com/ignitedb/vlog/pkg/logger"
	"github.com/ignitedb/vlog/pkg/options"
)

func TestAccessorGet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "segments"), 0755))
	log := logger.Noop()

	m, err := manifest.CreateNew(dir, "segments", log)
	require.NoError(t, err)

	mw, err := segment.NewMultiWriter(filepath.Join(dir, "segments"), options.DefaultSegmentSize, options.CompressionNone, 0, m.Allocator(), log)
	require.NoError(t, err)

	handle := mw.Handle([]byte("c"))
	value := []byte("ccccccccccccccccc")
	require.NoError(t, mw.Write([]byte("c"), value))
	require.NoError(t, m.Register(mw))

	a := New(m, log)

	got, ok, err := a.Get(handle)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, value, got)
}

func TestAccessorGetMissingSegment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "segments"), 0755))
	log := logger.Noop()

	m, err := manifest.CreateNew(dir, "segments", log)
	require.NoError(t, err)

	a := New(m, log)
	_, ok, err := a.Get(contracts.ValueHandle{SegmentID: 42, Offset: 5})
	require.NoError(t, err)
	require.False(t, ok)
}

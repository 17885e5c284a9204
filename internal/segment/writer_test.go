package segment

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/pkg/logger"
	"github.com/ignitedb/vlog/pkg/options"
)

func TestWriterWriteAndFinish(t *testing.T) {
	dir := t.TempDir()
	log := logger.Noop()

	w, err := NewWriter(dir, 1, options.CompressionNone, 0, log)
	require.NoError(t, err)

	keys := []string{"a", "b", "c", "d", "e"}
	for _, k := range keys {
		value := bytes.Repeat([]byte(k), 1000)
		offset := w.Offset([]byte(k))
		require.NoError(t, w.Write([]byte(k), value))
		require.Less(t, offset, w.Offset([]byte(k)))
	}

	seg, err := w.Finish()
	require.NoError(t, err)
	require.NotNil(t, seg)
	require.EqualValues(t, len(keys), seg.ItemCount())
	require.EqualValues(t, 5000, seg.TotalUncompressedBytes())

	r, err := NewReader(filepath.Join(dir, "1"))
	require.NoError(t, err)
	defer r.Close()

	for _, k := range keys {
		gotKey, gotValue, _, err := r.Next()
		require.NoError(t, err)
		require.Equal(t, []byte(k), gotKey)
		require.Equal(t, bytes.Repeat([]byte(k), 1000), gotValue)
	}

	_, _, _, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestWriterDiscardsEmptySegment(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 7, options.CompressionNone, 0, logger.Noop())
	require.NoError(t, err)

	seg, err := w.Finish()
	require.NoError(t, err)
	require.Nil(t, seg)

	_, statErr := os.Stat(filepath.Join(dir, "7"))
	require.True(t, os.IsNotExist(statErr))
}

func TestReadValueAt(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 3, options.CompressionNone, 0, logger.Noop())
	require.NoError(t, err)

	offset := w.Offset([]byte("c"))
	require.NoError(t, w.Write([]byte("c"), bytes.Repeat([]byte("c"), 1000)))
	_, err = w.Finish()
	require.NoError(t, err)

	value, err := ReadValueAt(filepath.Join(dir, "3"), offset)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte("c"), 1000), value)
}

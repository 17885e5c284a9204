package options

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/pkg/errors"
)

func TestWithSegmentSizeRejectsOutOfRange(t *testing.T) {
	opts := NewDefaultOptions()

	err := WithSegmentSize(MinSegmentSize - 1)(&opts)
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))

	err = WithSegmentSize(MaxSegmentSize + 1)(&opts)
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))

	require.Equal(t, DefaultSegmentSize, opts.SegmentOptions.Size, "out-of-range input must not mutate Options")
}

func TestWithSegmentSizeAcceptsInRange(t *testing.T) {
	opts := NewDefaultOptions()

	require.NoError(t, WithSegmentSize(MinSegmentSize)(&opts))
	require.Equal(t, MinSegmentSize, opts.SegmentOptions.Size)
}

func TestWithCompressionThresholdRejectsAboveSegmentSize(t *testing.T) {
	opts := NewDefaultOptions()
	require.NoError(t, WithSegmentSize(MinSegmentSize)(&opts))

	err := WithCompressionThreshold(uint32(MinSegmentSize) + 1)(&opts)
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))
	require.Equal(t, DefaultCompressionThreshold, opts.SegmentOptions.CompressionThreshold)
}

func TestWithDataDirRejectsBlank(t *testing.T) {
	opts := NewDefaultOptions()

	err := WithDataDir("   ")(&opts)
	require.Error(t, err)
	require.True(t, errors.IsValidationError(err))
}

func TestValidateRejectsMissingFields(t *testing.T) {
	opts := NewDefaultOptions()
	opts.DataDir = ""
	require.Error(t, opts.Validate())

	opts = NewDefaultOptions()
	opts.SegmentOptions = nil
	require.Error(t, opts.Validate())
}

func TestValidateAcceptsDefaults(t *testing.T) {
	opts := NewDefaultOptions()
	require.NoError(t, opts.Validate())
}

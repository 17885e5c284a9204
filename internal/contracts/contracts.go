// Package contracts defines the value log's boundary with the rest of the
// key-value engine: the handle a caller uses to locate a blob, and the two
// interfaces the log consumes (never implements) to talk to the primary
// key index during rollover.
package contracts

// ValueHandle locates a blob record within the value log. It is opaque to
// the index: the index stores handles verbatim and hands them back to
// ValueLog.Get, never interpreting segment IDs or offsets itself.
type ValueHandle struct {
	SegmentID uint64
	Offset    uint64
}

// IndexReader is the read side of the primary key index. The value log
// calls Get during rollover to decide whether a blob it is scanning is
// still the one the index points at (live) or has since been overwritten
// or deleted (stale).
type IndexReader interface {
	// Get returns the handle currently stored for key, and false if the key
	// is absent from the index. It never mutates the index.
	Get(key []byte) (ValueHandle, bool, error)
}

// IndexWriter is the write side of the primary key index, used only during
// rollover to redirect keys at their freshly rewritten handles.
type IndexWriter interface {
	// InsertIndirection records that key now lives at handle, with
	// uncompressedSize bytes of (decompressed) value. It is called once per
	// live blob encountered during a rollover pass, before the blob is
	// written to its new segment and before that segment is registered and
	// visible to other value log callers.
	InsertIndirection(key []byte, handle ValueHandle, uncompressedSize uint64) error

	// Finish commits every InsertIndirection call made since the writer was
	// obtained. It is the single durable commit point of a rollover: once it
	// returns nil, the new handles are authoritative. A failure here is a
	// soft error -- the value log has already registered the new segments,
	// so nothing is lost; whichever segments the index no longer references
	// afterward (the new ones, if none of the insertions took effect) are
	// marked stale by a later ScanForStats and reclaimed by
	// DropStaleSegments.
	Finish() error
}

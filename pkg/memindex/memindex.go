// Package memindex is a reference, in-memory implementation of the value
// log's IndexReader/IndexWriter contracts. It exists so tests and the
// demo command have something concrete to point a ValueLog at; a real
// deployment's primary key index lives elsewhere and is expected to
// satisfy the same two interfaces.
package memindex

import (
	"sync"

	"github.com/ignitedb/vlog/internal/contracts"
)

// entry pairs a handle with the uncompressed size InsertIndirection
// recorded for it, mirroring what a real index would keep per key.
type entry struct {
	handle           contracts.ValueHandle
	uncompressedSize uint64
}

// Index is a minimal, goroutine-safe key -> ValueHandle map.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New constructs an empty Index.
func New() *Index {
	return &Index{entries: make(map[string]entry)}
}

// Get implements contracts.IndexReader.
func (idx *Index) Get(key []byte) (contracts.ValueHandle, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.entries[string(key)]
	if !ok {
		return contracts.ValueHandle{}, false, nil
	}
	return e.handle, true, nil
}

// Set installs handle for key directly, bypassing the writer/Finish
// two-phase protocol. Used by callers (and tests) doing an ordinary write
// rather than a rollover.
func (idx *Index) Set(key []byte, handle contracts.ValueHandle, uncompressedSize uint64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[string(key)] = entry{handle: handle, uncompressedSize: uncompressedSize}
}

// Delete removes key from the index, as a caller would after a logical
// delete of the corresponding database row.
func (idx *Index) Delete(key []byte) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, string(key))
}

// Writer begins a rollover transaction against idx: InsertIndirection
// calls are staged locally and only become visible to Get once Finish
// applies them, matching the "single commit point" contract a real index
// writer must honor.
func (idx *Index) Writer() *Writer {
	return &Writer{idx: idx, staged: make(map[string]entry)}
}

// Writer implements contracts.IndexWriter against an in-memory Index.
type Writer struct {
	idx    *Index
	staged map[string]entry

	// failFinish, when set, makes Finish return it after applying the staged
	// entries -- used by tests exercising the "rollover succeeds but index
	// finish fails" scenario.
	failFinish error
}

// FailFinishWith configures w so Finish applies every staged
// InsertIndirection call and then returns err, modelling an index whose
// insertions landed but whose commit reported failure. Test-only knob.
func (w *Writer) FailFinishWith(err error) { w.failFinish = err }

// InsertIndirection implements contracts.IndexWriter.
func (w *Writer) InsertIndirection(key []byte, handle contracts.ValueHandle, uncompressedSize uint64) error {
	w.staged[string(key)] = entry{handle: handle, uncompressedSize: uncompressedSize}
	return nil
}

// Finish implements contracts.IndexWriter.
func (w *Writer) Finish() error {
	w.idx.mu.Lock()
	defer w.idx.mu.Unlock()
	for key, e := range w.staged {
		w.idx.entries[key] = e
	}

	return w.failFinish
}

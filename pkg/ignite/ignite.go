// Package ignite provides a convenience entry point bundling a value log
// with an in-memory index behind a simple key/value facade. It exists for
// callers who want to use the value log standalone, without bringing their
// own IndexReader/IndexWriter implementation or wiring Open/Register calls
// by hand -- a CLI demo or a quick integration test, for instance. Anything
// needing a durable primary key index should talk to internal/valuelog
// directly with its own contracts.IndexReader/IndexWriter.
package ignite

import (
	"context"
	stdErrors "errors"
	"sync"
	"sync/atomic"

	"github.com/ignitedb/vlog/internal/valuelog"
	"github.com/ignitedb/vlog/pkg/logger"
	"github.com/ignitedb/vlog/pkg/memindex"
	"github.com/ignitedb/vlog/pkg/options"
)

// ErrInstanceClosed is returned when attempting to perform operations on a
// closed Instance.
var ErrInstanceClosed = stdErrors.New("operation failed: cannot access closed instance")

// Instance bundles a ValueLog with an in-memory index behind a simple
// Set/Get/Delete facade. Writes are batched into a single-item MultiWriter
// per call; callers with higher throughput needs should use
// internal/valuelog directly and batch their own writes.
type Instance struct {
	mu     sync.Mutex
	closed atomic.Bool

	log *valuelog.ValueLog
	idx *memindex.Index
}

// NewInstance opens (or recovers) a value log at the directory named by
// opts and returns an Instance ready for use.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.New(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		if err := opt(&defaultOpts); err != nil {
			return nil, err
		}
	}
	if err := defaultOpts.Validate(); err != nil {
		return nil, err
	}

	vl, err := valuelog.Open(ctx, &valuelog.Config{Options: &defaultOpts, Logger: log})
	if err != nil {
		return nil, err
	}

	return &Instance{log: vl, idx: memindex.New()}, nil
}

// Set stores a key-value pair. If the key already exists, the old value
// becomes unreferenced and is reclaimed by a later ScanForStats +
// DropStaleSegments pass rather than being overwritten in place.
func (i *Instance) Set(ctx context.Context, key string, value []byte) error {
	if i.closed.Load() {
		return ErrInstanceClosed
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	mw, err := i.log.GetWriter()
	if err != nil {
		return err
	}

	handle := mw.Handle([]byte(key))
	if err := mw.Write([]byte(key), value); err != nil {
		return err
	}
	if err := i.log.Register(mw); err != nil {
		return err
	}

	i.idx.Set([]byte(key), handle, uint64(len(value)))
	return nil
}

// Get retrieves the value associated with key. A false result means the
// key was never set or has since been deleted.
func (i *Instance) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if i.closed.Load() {
		return nil, false, ErrInstanceClosed
	}

	handle, ok, err := i.idx.Get([]byte(key))
	if err != nil || !ok {
		return nil, false, err
	}

	return i.log.Get(handle)
}

// Delete removes a key. The value's blob record becomes unreferenced and
// is reclaimed by the next Compact (ScanForStats + DropStaleSegments).
func (i *Instance) Delete(ctx context.Context, key string) error {
	if i.closed.Load() {
		return ErrInstanceClosed
	}
	i.idx.Delete([]byte(key))
	return nil
}

// Compact reclaims disk space: it re-synchronizes every segment's
// staleness against the index and unlinks every segment that has reached
// 100% staleness. It does not run Rollover; segments that are only partly
// stale stay as they are. This Instance has no background scheduler;
// callers decide when to call it.
func (i *Instance) Compact(ctx context.Context) error {
	if i.closed.Load() {
		return ErrInstanceClosed
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.log.ScanForStats(i.idx); err != nil {
		return err
	}
	return i.log.DropStaleSegments()
}

// Close gracefully shuts down the Instance. It is safe to call multiple
// times; subsequent calls return ErrInstanceClosed.
func (i *Instance) Close(ctx context.Context) error {
	if !i.closed.CompareAndSwap(false, true) {
		return ErrInstanceClosed
	}
	return nil
}

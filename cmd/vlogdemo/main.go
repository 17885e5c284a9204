// Command vlogdemo exercises a value log end to end: it opens an Instance
// rooted at a temporary directory, writes a handful of keys, reads them
// back, deletes one, and runs a compaction pass -- useful as a smoke test
// and as a worked example of the pkg/ignite facade.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ignitedb/vlog/pkg/ignite"
	"github.com/ignitedb/vlog/pkg/options"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	dataDir, err := os.MkdirTemp("", "vlogdemo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dataDir)

	instance, err := ignite.NewInstance(ctx, "vlogdemo",
		options.WithDataDir(dataDir),
		options.WithSegmentSize(options.MinSegmentSize),
		options.WithCompression(options.CompressionLZ4),
	)
	if err != nil {
		return err
	}
	defer instance.Close(ctx)

	seed := map[string]string{
		"user:1:name":  "ada",
		"user:2:name":  "grace",
		"user:3:name":  "margaret",
		"session:abcd": "active",
	}

	for k, v := range seed {
		if err := instance.Set(ctx, k, []byte(v)); err != nil {
			return fmt.Errorf("set %q: %w", k, err)
		}
	}

	for k := range seed {
		v, ok, err := instance.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("get %q: %w", k, err)
		}
		if !ok {
			return fmt.Errorf("get %q: missing after set", k)
		}
		fmt.Printf("%s = %s\n", k, v)
	}

	if err := instance.Delete(ctx, "session:abcd"); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if err := instance.Compact(ctx); err != nil {
		return fmt.Errorf("compact: %w", err)
	}

	fmt.Println("compaction pass complete")
	return nil
}

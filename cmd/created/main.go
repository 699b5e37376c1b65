// Command created lists the documents of a MongoDB collection by their
// creation timestamp.
//
// Usage:
//
//	created <collection> [--since DATE] [--to DATE] [--limit N]
//		[--select FIELD,-FIELD] [--cursor] [--explain [--keep KEY,...|--index-only]]
//
// The connection is configured by the CREATED_URL, CREATED_DATABASE and
// CREATED_TIMEOUT environment variables, or a config file given by --config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

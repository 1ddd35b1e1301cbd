// Package main provides ccadmin, the administrative CLI for the record
// store: migrations, soft-deleted record inspection, undelete, and purge.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

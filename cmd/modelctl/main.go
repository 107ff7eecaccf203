/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command modelctl inspects and edits a modelstore database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

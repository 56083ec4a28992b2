// Command gosession drives a session profile from the shell: log in, inspect the
// current payload, refresh, and log out. Profiles persist in a Badger directory by
// default, or in Redis with --backend redis.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// Command httpaccess sends requests through the configured forward proxy,
// serves the status API and helps debug bypass lists.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

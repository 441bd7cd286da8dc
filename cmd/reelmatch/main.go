// reelmatch serves content-based movie recommendations.
package main

import (
	"os"

	"github.com/hubenschmidt/reelmatch/cmd/reelmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command ecsfsctl formats, inspects, and mounts ECS150FS disk images.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ecsfsctl:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"runtime"
)

func init() {
	// raylib must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import "github.com/kartoza/kartoza-chromakey/cmd"

// Version is set via ldflags during build
var version = "0.2.0-dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}

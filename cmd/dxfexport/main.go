package main

import "github.com/pid-digitizer/backend/internal/cli"

// Version info (set during build)
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	cli.Execute()
}

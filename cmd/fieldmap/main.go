// fieldmap CLI - field mapping rule sets, the mapping API and the mock CRM service
package main

import (
	"os"

	"github.com/getmockd/fieldmap/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	return cli.Main()
}

/*
Command-line tool for listing summary information about files, dataset
hierarchies and S3 buckets.

Usage:

  $ datals [<flags>] <path>

Use 'datals help' to see more details.
*/
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/datals/datals/cli"
)

func main() {
	app := kingpin.New("datals", "List summary information about files, dataset hierarchies and S3 buckets.")
	app.Version(cli.BuildVersion)

	cli.NewApp().Attach(app)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

package main

import (
	"os"

	"github.com/babarot/scripts/internal/cli"
)

// These variables are set in build step
var (
	Version   = "unset"
	Revision  = "unset"
	BuildDate = "unset"
)

func main() {
	os.Exit(cli.Main(func() error {
		return cli.RunQueryParams(cli.Version{
			AppName:     "queryparams",
			Description: "split the query parameters off a URL",
			Version:     Version,
			Revision:    Revision,
			BuildDate:   BuildDate,
		})
	}))
}

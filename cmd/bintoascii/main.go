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
		return cli.RunBinToASCII(cli.Version{
			AppName:     "bintoascii",
			Description: "convert binary to ASCII",
			Version:     Version,
			Revision:    Revision,
			BuildDate:   BuildDate,
		})
	}))
}

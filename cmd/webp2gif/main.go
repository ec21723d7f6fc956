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
		return cli.RunWebPToGIF(cli.Version{
			AppName:     "webp2gif",
			Description: "convert an animated .webp to a .gif",
			Version:     Version,
			Revision:    Revision,
			BuildDate:   BuildDate,
		})
	}))
}

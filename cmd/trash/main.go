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
		return cli.RunTrash(cli.Version{
			AppName:     "trash",
			Description: "move files to the trash, or to a backup trash when that fails",
			Version:     Version,
			Revision:    Revision,
			BuildDate:   BuildDate,
		})
	}))
}

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/babarot/scripts/internal/webp"
	"github.com/jessevdk/go-flags"
)

type WebPToGIFOption struct {
	Args struct {
		WebP string `positional-arg-name:"IMAGE.webp" description:"The .webp file"`
		GIF  string `positional-arg-name:"IMAGE.gif" description:"Where to write the .gif output to"`
	} `positional-args:"yes"`

	Log  LogOption  `group:"Logging Options"`
	Meta MetaOption `group:"Meta Options"`
}

// RunWebPToGIF is the entry point of the webp2gif command
func RunWebPToGIF(v Version) error {
	var opt WebPToGIFOption
	_, help, err := parse(&opt, v, "[options] IMAGE.webp IMAGE.gif")
	if err != nil || help {
		return err
	}

	if opt.Meta.Version {
		fmt.Fprint(os.Stdout, v.Print())
		return nil
	}

	closeLog, err := setupLogger(opt.Log)
	defer closeLog()
	if err != nil {
		return err
	}

	if opt.Args.WebP == "" || opt.Args.GIF == "" {
		return &flags.Error{Type: flags.ErrRequired, Message: "both IMAGE.webp and IMAGE.gif are required"}
	}

	slog.Debug("webp2gif started", "src", opt.Args.WebP, "dst", opt.Args.GIF)
	return webp.Convert(opt.Args.WebP, opt.Args.GIF)
}

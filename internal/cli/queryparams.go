package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/babarot/scripts/internal/query"
	"github.com/mattn/go-isatty"
)

type QueryParamsOption struct {
	MaxKeyWidth int `short:"m" long:"max-key-width" value-name:"N" default:"20" description:"Maximum width of the key column"`

	Log  LogOption  `group:"Logging Options"`
	Meta MetaOption `group:"Meta Options"`
}

// RunQueryParams is the entry point of the queryparams command
func RunQueryParams(v Version) error {
	var opt QueryParamsOption
	args, help, err := parse(&opt, v, "[options] [URL]")
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

	var url string
	switch len(args) {
	case 0:
		if isatty.IsTerminal(os.Stdin.Fd()) {
			slog.Info("reading url from stdin")
		}
		url, err = readLine(os.Stdin)
		if err != nil {
			return err
		}
	case 1:
		url = args[0]
	default:
		return errors.New("too many arguments")
	}

	return queryParams(os.Stdout, url, opt.MaxKeyWidth)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// queryParams prints the base of url, then one aligned line per parameter
func queryParams(w io.Writer, url string, maxKeyWidth int) error {
	base, params, ok := query.Split(url)
	if _, err := fmt.Fprintln(w, base); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	slog.Debug("split url", "base", base, "params", len(params))
	return query.Format(w, params, maxKeyWidth)
}

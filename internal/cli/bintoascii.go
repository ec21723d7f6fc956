package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/babarot/scripts/internal/binascii"
	"github.com/mattn/go-isatty"
)

type BinToASCIIOption struct {
	Log  LogOption  `group:"Logging Options"`
	Meta MetaOption `group:"Meta Options"`
}

// RunBinToASCII is the entry point of the bintoascii command
func RunBinToASCII(v Version) error {
	var opt BinToASCIIOption
	args, help, err := parse(&opt, v, "[options] [BITS...]")
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

	if len(args) == 0 && isatty.IsTerminal(os.Stdin.Fd()) {
		slog.Info("reading binary from stdin")
	}
	return binToASCII(args, os.Stdin, os.Stdout)
}

// binToASCII decodes args joined into one line, or each line of stdin when
// no args are given, and ends the output with a single newline
func binToASCII(args []string, stdin io.Reader, stdout io.Writer) error {
	w := bufio.NewWriter(stdout)

	decode := func(line string) error {
		text, err := binascii.Decode(line)
		if err != nil {
			return err
		}
		slog.Debug("decoded", "bits", len(line), "chars", len(text))
		_, err = w.WriteString(text)
		return err
	}

	if len(args) > 0 {
		if err := decode(strings.Join(args, "")); err != nil {
			return err
		}
	} else {
		r := bufio.NewReader(stdin)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				if err := decode(line); err != nil {
					return err
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
		}
	}

	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

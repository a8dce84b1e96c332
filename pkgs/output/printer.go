package output

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

type Printer interface {
	Printf(format string, a ...any) (n int, err error)
}

type ConsolePrinter struct{}

func (c ConsolePrinter) Printf(format string, a ...any) (n int, err error) {
	return fmt.Printf(format, a...)
}

// HexPrinter prints through Printf and adds DumpBytes, which renders a byte
// payload (the feature vector) as a hex dump when its output is a terminal
// and as a single line of hex bytes otherwise, so piped output stays
// script-friendly.
type HexPrinter struct {
	Out *os.File
}

func NewHexPrinter() HexPrinter {
	return HexPrinter{Out: os.Stdout}
}

func (h HexPrinter) Printf(format string, a ...any) (int, error) {
	return fmt.Fprintf(h.out(), format, a...)
}

// DumpBytes prints data as a hex/ASCII dump when attached to a terminal, or
// one hex byte per field otherwise.
func (h HexPrinter) DumpBytes(label string, data []byte) {
	out := h.out()
	if isatty.IsTerminal(out.Fd()) {
		fmt.Fprintf(out, "%s:\n%s", label, hex.Dump(data))
		return
	}
	fmt.Fprintf(out, "%s: % X\n", label, data)
}

func (h HexPrinter) out() *os.File {
	if h.Out != nil {
		return h.Out
	}
	return os.Stdout
}

package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/huff-lang/huffc/hasm"
)

// Fmt parses a hasm contract file and prints it back out in canonical form.
func (c *Cmd) Fmt(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	contract, err := hasm.Parse(src)
	if err != nil {
		return printError(stdio, err)
	}

	out, err := hasm.Print(contract)
	if err != nil {
		return printError(stdio, err)
	}

	_, err = stdio.Stdout.Write(out)
	return err
}

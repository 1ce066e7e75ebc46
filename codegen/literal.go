package codegen

import (
	"go/token"

	"github.com/huff-lang/huffc/ast"
	"github.com/huff-lang/huffc/errs"
	"github.com/huff-lang/huffc/internal/evm"
)

// literalPushBytes emits the PUSH<N> bytes for a constant's resolved value.
// Constants must already be literals by the time they reach codegen (the
// free-storage-pointer pass runs upstream, out of scope here); one that
// isn't is a programmer error upstream, surfaced as StoragePointersNotDerived
// rather than silently miscompiled.
func literalPushBytes(c *ast.Constant) (string, error) {
	if c.Kind == ast.ConstFreeStoragePointer {
		return "", errs.New(errs.StoragePointersNotDerived, c.Pos, c.Name,
			"constant %q still holds an underived free storage pointer at codegen time", c.Name)
	}
	return evm.PushFor(evm.Even(c.Value))
}

func missingMacro(pos token.Position, name string) error {
	return errs.New(errs.MissingMacroDefinition, pos, name, "no macro named %q is defined", name)
}

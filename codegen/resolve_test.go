package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huff-lang/huffc/codegen"
	"github.com/huff-lang/huffc/hasm"
)

// TestResolveArgRefNestedBubbling checks that a forwarded parameter
// resolves correctly across two levels of macro invocation: MAIN passes a
// literal to WRAPPER, which forwards its own parameter (same name, "val")
// on to HELPER. HELPER's use of "val" must bubble all the way back to
// MAIN's literal, not stop at the first enclosing invocation.
func TestResolveArgRefNestedBubbling(t *testing.T) {
	src := `
contract:

macro: HELPER 1 0
	params:
		val
	body:
		arg val

macro: WRAPPER 1 0
	params:
		val
	body:
		invoke HELPER arg:val

macro: MAIN 0 0
	body:
		invoke WRAPPER lit:05

macro: CONSTRUCTOR 0 0
`
	c, err := hasm.Parse([]byte(src))
	require.NoError(t, err)

	d := &codegen.Driver{Contract: c}
	res, err := d.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "6005", res.Runtime)
}

// TestResolveArgRefOpcodeShadowsLabel checks that an identifier matching
// both a defined label and an opcode mnemonic resolves to the opcode: §4.2's
// resolution order tries constant, then opcode, before ever considering a
// label or forwarded parameter.
func TestResolveArgRefOpcodeShadowsLabel(t *testing.T) {
	src := `
contract:

macro: MAIN 0 0
	body:
		label add
		arg add

macro: CONSTRUCTOR 0 0
`
	c, err := hasm.Parse([]byte(src))
	require.NoError(t, err)

	d := &codegen.Driver{Contract: c}
	res, err := d.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "5b01", res.Runtime)
}

// TestResolveArgRefMissingParamWarnsNotErrors checks that an identifier the
// invocation simply didn't supply a value for (a declared parameter of the
// callee, and neither an opcode nor a constant) produces no bytes rather
// than an error, matching the reference lowering's warn-and-skip behavior.
func TestResolveArgRefMissingParamWarnsNotErrors(t *testing.T) {
	src := `
contract:

macro: HELPER 1 0
	params:
		val
	body:
		arg val
		raw 01

macro: MAIN 0 0
	body:
		invoke HELPER

macro: CONSTRUCTOR 0 0
`
	c, err := hasm.Parse([]byte(src))
	require.NoError(t, err)

	d := &codegen.Driver{Contract: c}
	res, err := d.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "01", res.Runtime)
}

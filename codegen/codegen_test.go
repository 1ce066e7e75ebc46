package codegen_test

import (
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"

	"github.com/huff-lang/huffc/codegen"
	"github.com/huff-lang/huffc/hasm"
)

// parseFixture loads and parses a testdata/*.hasm file into a contract.
func parseFixture(t *testing.T, name string) *codegen.Driver {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	c, err := hasm.Parse(b)
	require.NoError(t, err)
	return &codegen.Driver{Contract: c}
}

// TestDriverRunScenarios exercises the worked examples: a fresh MAIN/
// CONSTRUCTOR pair, lowered end to end, must produce byte-identical hex.
func TestDriverRunScenarios(t *testing.T) {
	cases := []struct {
		desc    string
		fixture string
		runtime string
	}{
		{"empty main", "s1_empty_main.hasm", ""},
		{"opcode and literal", "s2_opcode_literal.hasm", "6001600201"},
		{"label and jump", "s3_label_ref.hasm", "5b600061000056"},
		{"codesize", "s4_codesize.hasm", "6004"},
		{"packed jump table", "s5_packed_jumptable.hasm", "6100055b5b00030004"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			d := parseFixture(t, tc.fixture)
			res, err := d.Run(nil)
			require.NoError(t, err)
			require.Equal(t, tc.runtime, res.Runtime)
		})
	}
}

// TestDriverRunConstructorWrap checks the full deployment assembly (churn):
// constructor bytecode, the bootstrap copy-and-return stub, runtime code and
// ABI-encoded constructor arguments concatenated in that order.
func TestDriverRunConstructorWrap(t *testing.T) {
	d := parseFixture(t, "s6_constructor_wrap.hasm")
	res, err := d.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "ff", res.Runtime)
	require.Equal(t, "6100018061000d6000396000f3ff", res.Bytecode)
}

// TestDriverRunConstructorArgs confirms ABI-encoded constructor arguments
// are appended after the runtime code in the deployment bytecode.
func TestDriverRunConstructorArgs(t *testing.T) {
	d := parseFixture(t, "s6_constructor_wrap.hasm")

	uintTy, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)

	res, err := d.Run([]codegen.ConstructorArg{{Type: uintTy, Value: big.NewInt(5)}})
	require.NoError(t, err)
	require.Equal(t, "ff", res.Runtime)
	require.Equal(t,
		"6100018061000d6000396000f3ff"+"0000000000000000000000000000000000000000000000000000000000000005",
		res.Bytecode)
}

// TestDriverRunConstructorWithTable checks that a declared jump table is
// appended only after MAIN's code, never glued onto CONSTRUCTOR's own
// bytecode, even though finalizeLayout walks every contract table regardless
// of which macro invoked it.
func TestDriverRunConstructorWithTable(t *testing.T) {
	d := parseFixture(t, "s7_constructor_with_table.hasm")
	res, err := d.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "6100055b5b00030004", res.Runtime)
	require.Equal(t,
		"ff"+"6100098061000e6000396000f3"+"6100055b5b00030004",
		res.Bytecode)
}

// TestDriverRunMissingMacros checks that a contract missing MAIN or
// CONSTRUCTOR fails fast instead of silently emitting partial bytecode.
func TestDriverRunMissingMacros(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		err  string
	}{
		{"missing both", `contract:
`, "MAIN"},
		{"missing constructor", `contract:

macro: MAIN 0 0
`, "CONSTRUCTOR"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			c, err := hasm.Parse([]byte(tc.src))
			require.NoError(t, err)
			d := &codegen.Driver{Contract: c}
			_, err = d.Run(nil)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		})
	}
}

// TestDriverRunUnmatchedJump checks a label reference with no matching
// definition surfaces as an error rather than leaving a placeholder
// "xxxx" in the output.
func TestDriverRunUnmatchedJump(t *testing.T) {
	src := `
contract:

macro: MAIN 0 0
	body:
		labelref nowhere

macro: CONSTRUCTOR 0 0
`
	c, err := hasm.Parse([]byte(src))
	require.NoError(t, err)

	d := &codegen.Driver{Contract: c}
	_, err = d.Run(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nowhere")
}

// TestDriverRunRecursionLimit checks a macro that invokes itself hits the
// configured depth guard instead of recursing unbounded.
func TestDriverRunRecursionLimit(t *testing.T) {
	src := `
contract:

macro: MAIN 0 0
	body:
		invoke MAIN

macro: CONSTRUCTOR 0 0
`
	c, err := hasm.Parse([]byte(src))
	require.NoError(t, err)

	d := &codegen.Driver{Contract: c, MaxDepth: 4}
	_, err = d.Run(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "depth")
}

package codegen

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/huff-lang/huffc/ast"
)

// defaultMaxDepth bounds macro expansion recursion (§5's "MAY impose a
// configurable limit"). 256 comfortably exceeds any hand-written macro
// graph; pathological or accidentally-cyclic input hits RecursionLimit
// instead of exhausting the goroutine stack.
const defaultMaxDepth = 256

// ConstructorArg pairs an ABI type with the value to encode for it. Driver
// treats encoding as an opaque collaborator (§6): it asks abi to encode each
// argument independently and concatenates the results, mirroring how the
// reference lowering treats the ABI crate.
type ConstructorArg struct {
	Type  abi.Type
	Value any
}

// Driver runs the codegen pipeline end to end: selecting MAIN/CONSTRUCTOR,
// expanding and finalizing each, and assembling the deployment artifact
// (§4.5, churn).
type Driver struct {
	Contract *ast.Contract

	// MaxDepth overrides defaultMaxDepth when non-zero.
	MaxDepth int
}

// Result is the finished output of a Driver.Run call.
type Result struct {
	Bytecode string // deployment bytecode (constructor || bootstrap || runtime || args), lowercase hex
	Runtime  string // MAIN bytecode alone, lowercase hex
}

// Run selects MAIN and CONSTRUCTOR, lowers both, and assembles the
// deployment bytecode. args is encoded and appended after the runtime code,
// exactly as the reference lowering appends ABI-encoded constructor
// arguments (§4.5).
func (d *Driver) Run(args []ConstructorArg) (*Result, error) {
	mainMacro, ok := d.Contract.Macro("MAIN")
	if !ok {
		return nil, missingMacro(token.Position{}, "MAIN")
	}
	ctorMacro, ok := d.Contract.Macro("CONSTRUCTOR")
	if !ok {
		return nil, missingMacro(token.Position{}, "CONSTRUCTOR")
	}

	mainHex, err := d.expandMain(mainMacro)
	if err != nil {
		return nil, err
	}
	ctorHex, err := d.expandConstructor(ctorMacro)
	if err != nil {
		return nil, err
	}

	encodedArgs, err := encodeConstructorArgs(args)
	if err != nil {
		return nil, err
	}

	deployment := churn(mainHex, ctorHex, encodedArgs)

	log.Info("codegen complete", "runtime_len", len(mainHex)/2, "deployment_len", len(deployment)/2)
	return &Result{Bytecode: deployment, Runtime: strings.ToLower(mainHex)}, nil
}

// expandMain lowers MAIN and runs it through finalizeLayout (§4.4): MAIN is
// the code region jump tables are appended after, so its unmatched jumps and
// __tablestart placeholders are the ones that get checked and patched.
func (d *Driver) expandMain(m *ast.MacroDefinition) (string, error) {
	res, err := d.expand(m)
	if err != nil {
		return "", err
	}
	return finalizeLayout(res, d.Contract.Tables)
}

// expandConstructor lowers CONSTRUCTOR by concatenating its own bytes only,
// mirroring the reference lowering's generate_constructor_bytecode: unlike
// MAIN, CONSTRUCTOR never goes through finalizeLayout, since tables belong to
// the runtime region CONSTRUCTOR merely returns, not to CONSTRUCTOR itself.
func (d *Driver) expandConstructor(m *ast.MacroDefinition) (string, error) {
	res, err := d.expand(m)
	if err != nil {
		return "", err
	}
	return res.Hex(), nil
}

func (d *Driver) expand(m *ast.MacroDefinition) (*BytecodeRes, error) {
	maxDepth := d.MaxDepth
	if maxDepth == 0 {
		maxDepth = defaultMaxDepth
	}
	e := &expander{contract: d.Contract, maxDepth: maxDepth}

	scope := &stack[*ast.MacroDefinition]{}
	scope.push(m)
	mis := &stack[callFrame]{}

	return e.expandMacro(m, scope, 0, mis)
}

// encodeConstructorArgs ABI-encodes each argument independently and
// concatenates the results, matching the reference `args.iter().map(|tok|
// abi::encode(&[tok]))` behavior.
func encodeConstructorArgs(args []ConstructorArg) (string, error) {
	var b strings.Builder
	for i, a := range args {
		packed, err := abi.Arguments{{Type: a.Type}}.Pack(a.Value)
		if err != nil {
			return "", fmt.Errorf("codegen: encoding constructor argument %d: %w", i, err)
		}
		b.WriteString(hexutil.Encode(packed)[2:])
	}
	return b.String(), nil
}

// churn assembles the final deployment bytecode per §4.5:
//
//	K || 61<size16(M)> 80 61<offset16(K)> 6000396000f3 || M || A
func churn(mainHex, ctorHex, encodedArgs string) string {
	contractSize := fmt.Sprintf("%04x", len(mainHex)/2)
	contractCodeOffset := fmt.Sprintf("%04x", 13+len(ctorHex)/2)

	bootstrap := "61" + contractSize + "8061" + contractCodeOffset + "6000396000f3"
	deployment := ctorHex + bootstrap + mainHex + encodedArgs
	return strings.ToLower(deployment)
}

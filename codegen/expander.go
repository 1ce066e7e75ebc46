package codegen

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/huff-lang/huffc/ast"
	"github.com/huff-lang/huffc/errs"
	"github.com/huff-lang/huffc/internal/evm"
)

// expander holds the state shared across one top-level expandMacro call
// tree: the contract being compiled and the recursion-depth guard (§5).
type expander struct {
	contract *ast.Contract
	maxDepth int
	depth    int // expandMacro calls currently on the Go call stack
}

// expandMacro implements §4.3 (macro_to_bytecode): a recursive, depth-first
// walk of m's body that produces a BytecodeRes rooted at off. scope is the
// chain of macro definitions from the entry macro down to m inclusive; mis
// is the invocation stack (absolute offset, invocation statement) used by
// argument bubbling.
//
// scope is intentionally never popped after a child recursion returns here;
// it is only truncated by bubble_arg_call's local clones when a shorter view
// is needed. A sibling invocation later in the same body pushes on top of
// whatever the previous sibling left behind, mirroring the reference
// lowering (§9).
func (e *expander) expandMacro(
	m *ast.MacroDefinition,
	scope *stack[*ast.MacroDefinition],
	off int,
	mis *stack[callFrame],
) (*BytecodeRes, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth {
		return nil, errs.New(errs.RecursionLimit, m.Pos, m.Name,
			"macro expansion exceeded the configured depth limit (%d)", e.maxDepth)
	}

	res := newBytecodeRes()
	jumpTable := map[int][]Jump{}
	offset := off

	for _, ir := range m.Body {
		startingOffset := offset

		switch ir.Kind {
		case ast.IRRawBytes:
			res.Bytes = append(res.Bytes, codeByte{startingOffset, ir.Hex})
			offset += len(ir.Hex) / 2

		case ast.IRConstantRef:
			c, ok := e.contract.Constant(ir.Name)
			if !ok {
				return nil, errs.New(errs.MissingConstantDefinition, ir.Pos, ir.Name,
					"no constant named %q is defined", ir.Name)
			}
			hex, err := literalPushBytes(c)
			if err != nil {
				return nil, err
			}
			res.Bytes = append(res.Bytes, codeByte{startingOffset, hex})
			offset += len(hex) / 2

		case ast.IRArgRef:
			if err := e.resolveArgRef(ir.Name, &res.Bytes, m, scope, &offset, mis, jumpTable); err != nil {
				return nil, err
			}

		case ast.IRStatement:
			if err := e.expandStatement(ir.Stmt, res, scope, &offset, mis, jumpTable); err != nil {
				return nil, err
			}
		}
	}

	if _, ok := mis.pop(); !ok {
		log.Warn("invocation stack empty at end of macro body", "macro", m.Name)
	}

	for codeIndex, jumps := range jumpTable {
		idx := findByte(res.Bytes, codeIndex)
		if idx < 0 {
			continue
		}
		for _, j := range jumps {
			if res.Bytes[idx].hex[0:2] != "61" || len(res.Bytes[idx].hex) != 6 || res.Bytes[idx].hex[2:6] != "xxxx" {
				log.Error("jump placeholder missing or already patched", "label", j.Label, "offset", codeIndex)
				continue
			}
			labelOff, ok := res.LabelIndices.Get(j.Label)
			if !ok {
				res.UnmatchedJumps = append(res.UnmatchedJumps, Jump{Label: j.Label, ByteIndex: codeIndex})
				continue
			}
			res.Bytes[idx].hex = res.Bytes[idx].hex[0:2] + evm.Pad(itoaHex(labelOff), 2)
		}
	}

	return res, nil
}

// expandStatement handles the non-raw, non-ArgRef IR items: macro
// invocations, label definitions/references, and compile-time builtins.
func (e *expander) expandStatement(
	stmt ast.Statement,
	res *BytecodeRes,
	scope *stack[*ast.MacroDefinition],
	offset *int,
	mis *stack[callFrame],
	jumpTable map[int][]Jump,
) error {
	startingOffset := *offset

	switch stmt.Kind {
	case ast.StmtMacroInvocation:
		callee, ok := e.contract.Macro(stmt.Callee)
		if !ok {
			return missingMacro(stmt.Pos, stmt.Callee)
		}

		stmtCopy := stmt
		scope.push(callee)
		mis.push(callFrame{offset: startingOffset, inv: &stmtCopy})

		child, err := e.expandMacro(callee, scope, startingOffset, mis)
		if err != nil {
			return err
		}

		for _, j := range child.UnmatchedJumps {
			newIndex := j.ByteIndex
			jumpTable[newIndex] = append(jumpTable[newIndex], Jump{Label: j.Label, ByteIndex: 0})
		}
		res.merge(child)
		*offset += child.Len()

	case ast.StmtLabelDef:
		res.LabelIndices.Put(stmt.Label, startingOffset)
		res.Bytes = append(res.Bytes, codeByte{startingOffset, evm.Jumpdest.Hex()})
		*offset++

	case ast.StmtLabelRef:
		res.Bytes = append(res.Bytes, codeByte{startingOffset, push2Placeholder})
		jumpTable[startingOffset] = []Jump{{Label: stmt.Label, ByteIndex: 0}}
		*offset += 3

	case ast.StmtBuiltinCall:
		return e.expandBuiltin(stmt, res, scope, offset, mis)
	}

	return nil
}

// expandBuiltin implements __codesize/__tablesize/__tablestart (§4.3).
func (e *expander) expandBuiltin(
	stmt ast.Statement,
	res *BytecodeRes,
	scope *stack[*ast.MacroDefinition],
	offset *int,
	mis *stack[callFrame],
) error {
	startingOffset := *offset

	switch stmt.Builtin {
	case ast.BuiltinCodesize:
		target, ok := e.contract.Macro(stmt.BuiltinArg)
		if !ok {
			return missingMacro(stmt.Pos, stmt.BuiltinArg)
		}
		// Reference lowering recurses without pushing scope/mis for
		// __codesize: the recursion measures a macro's own size, it does
		// not represent a real invocation in the call chain.
		child, err := e.expandMacro(target, scope, startingOffset, mis)
		if err != nil {
			return err
		}
		push, err := evm.PushFor(evm.Even(itoaHex(child.Len())))
		if err != nil {
			return err
		}
		res.Bytes = append(res.Bytes, codeByte{startingOffset, push})
		*offset += len(push) / 2
		return nil

	case ast.BuiltinTablesize:
		table, ok := e.contract.Table(stmt.BuiltinArg)
		if !ok {
			return errs.New(errs.MissingTableDefinition, stmt.Pos, stmt.BuiltinArg,
				"no jump table named %q is defined", stmt.BuiltinArg)
		}
		push, err := evm.PushFor(evm.Even(itoaHex(table.Size)))
		if err != nil {
			return err
		}
		res.Bytes = append(res.Bytes, codeByte{startingOffset, push})
		*offset += len(push) / 2
		return nil

	case ast.BuiltinTablestart:
		if _, ok := e.contract.Table(stmt.BuiltinArg); !ok {
			return errs.New(errs.MissingTableDefinition, stmt.Pos, stmt.BuiltinArg,
				"no jump table named %q is defined", stmt.BuiltinArg)
		}
		res.TableInstances = append(res.TableInstances, Jump{Label: stmt.BuiltinArg, ByteIndex: startingOffset})
		res.Bytes = append(res.Bytes, codeByte{startingOffset, push2Placeholder})
		*offset += 3
		return nil
	}

	return fmt.Errorf("codegen: unhandled builtin kind %v", stmt.Builtin)
}

// findByte returns the index into bytes of the entry starting at offset, or
// -1. Placeholder entries are always exactly "61xxxx" long (6 hex chars), so
// a linear scan is cheap enough relative to the size of a single macro body.
func findByte(bytes []codeByte, offset int) int {
	for i, b := range bytes {
		if b.offset == offset {
			return i
		}
	}
	return -1
}

// itoaHex renders n as a minimal-length (possibly odd) hex string with no
// leading zeros, except that 0 itself renders as "0".
func itoaHex(n int) string {
	return fmt.Sprintf("%x", n)
}

package codegen

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/huff-lang/huffc/ast"
	"github.com/huff-lang/huffc/errs"
	"github.com/huff-lang/huffc/internal/evm"
)

// resolveArgRef implements §4.2 (bubble_arg_call): given an identifier
// argName referenced inside macroDef's body, classify it against the
// innermost enclosing invocation and append its bytes to bytes at *offset.
//
// Resolution order is significant and intentionally not reordered: Huff
// lets an opcode mnemonic and a label share a namespace, and resolves the
// ambiguity by trying constant, then opcode, then parameter substitution,
// then (only once the invocation stack is empty) a label-call fallback.
// Callers relying on an identifier meaning "label" must not also have a
// same-named opcode or constant in scope.
func (e *expander) resolveArgRef(
	argName string,
	bytes *[]codeByte,
	macroDef *ast.MacroDefinition,
	scope *stack[*ast.MacroDefinition],
	offset *int,
	mis *stack[callFrame],
	jumpTable map[int][]Jump,
) error {
	startingOffset := *offset

	if c, ok := e.contract.Constant(argName); ok {
		hex, err := literalPushBytes(c)
		if err != nil {
			return err
		}
		*offset += len(hex) / 2
		*bytes = append(*bytes, codeByte{startingOffset, hex})
		return nil
	}

	if op, ok := evm.Lookup(argName); ok {
		hex := op.Hex()
		*offset += len(hex) / 2
		*bytes = append(*bytes, codeByte{startingOffset, hex})
		return nil
	}

	if invoc, ok := mis.last(); ok {
		pos := macroDef.ParamIndex(argName)
		if pos < 0 {
			log.Warn("arg not in macro parameter list", "arg", argName, "macro", macroDef.Name)
			return nil
		}
		if pos >= len(invoc.inv.Args) {
			log.Warn("arg found in macro def but omitted by invocation", "arg", argName, "macro", macroDef.Name)
			return nil
		}

		arg := invoc.inv.Args[pos]
		switch arg.Kind {
		case ast.MacroArgLiteral:
			hex := evm.Even(arg.Hex)
			push, err := evm.PushFor(hex)
			if err != nil {
				return err
			}
			*offset += len(push) / 2
			*bytes = append(*bytes, codeByte{startingOffset, push})
			return nil

		case ast.MacroArgIdent:
			*bytes = append(*bytes, codeByte{startingOffset, push2Placeholder})
			jumpTable[startingOffset] = []Jump{{Label: arg.Name, ByteIndex: 0}}
			*offset += 3
			return nil

		case ast.MacroArgCall:
			log.Debug("bubbling arg call up a scope level", "arg", arg.Name, "from", macroDef.Name)
			newScope := scope.clone()
			newScope.truncateTo(max(0, newScope.len()-1))
			parent, ok := newScope.last()
			if !ok {
				return errs.New(errs.MissingMacroInvocation, invoc.inv.Pos, macroDef.Name,
					"argument bubbling attempted past the root")
			}

			lastFrame, ok := mis.last()
			if !ok {
				return errs.New(errs.MissingMacroInvocation, invoc.inv.Pos, macroDef.Name,
					"argument bubbling attempted past the root")
			}

			nextMis := mis
			if lastFrame.inv.Callee == macroDef.Name {
				nextMis = mis.clone()
				nextMis.truncateTo(max(0, nextMis.len()-1))
			}
			return e.resolveArgRef(arg.Name, bytes, parent, newScope, offset, nextMis, jumpTable)
		}
		return nil
	}

	// Invocation stack empty: fall back to treating argName as a label
	// reference defined by a caller at the same layout position (§4.2 step
	// 4, §9's "ambiguous nomenclature" open question).
	key := 0
	if f, ok := mis.last(); ok {
		key = f.offset
	}
	log.Info("arg call defaulting to label call", "arg", argName, "key", key)
	jumpTable[key] = []Jump{{Label: argName, ByteIndex: 0}}
	*bytes = append(*bytes, codeByte{startingOffset, push2Placeholder})
	*offset += 3
	return nil
}

const push2Placeholder = "61xxxx"

// Package hasm implements a human-readable/writable textual form of a
// resolved Huff contract: a stand-in for the Huff lexer/parser/resolver
// pipeline, which sits upstream of (and out of scope for) the codegen core.
// It exists so the core can be exercised and golden-tested without a real
// Huff front end, the same way the teacher's assembler format exercises its
// VM without a real source-language front end.
//
// The format looks like this (indentation is cosmetic; section order is
// fixed; "#" starts a line comment):
//
//	contract:
//		constants:
//			OWNER_SLOT literal 00
//			NEXT_SLOT fsp
//		tables:
//			table: JUMP_TABLE packed 4
//				label_a
//				label_b
//
//	macro: MAIN 0 0
//		params:
//			x
//		body:
//			raw 6001
//			const OWNER_SLOT
//			arg x
//			label entry
//			labelref entry
//			invoke OTHER lit:01 id:entry arg:x
//			codesize OTHER
//			tablesize JUMP_TABLE
//			tablestart JUMP_TABLE
package hasm

import (
	"bufio"
	"bytes"
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/huff-lang/huffc/ast"
)

var sections = map[string]bool{
	"contract:":   true,
	"constants:":  true,
	"tables:":     true,
	"table:":      true,
	"macro:":      true,
	"params:":     true,
	"body:":       true,
}

// Parse loads a *ast.Contract from its hasm textual representation.
func Parse(b []byte) (*ast.Contract, error) {
	p := &parser{s: bufio.NewScanner(bytes.NewReader(b)), c: ast.NewContract()}

	fields, line := p.next()
	p.contract(fields, line)

	fields, line = p.next()
	fields, line = p.constants(fields, line)
	fields, line = p.tables(fields, line)

	for p.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "macro:") {
		fields, line = p.macro(fields, line)
	}

	if p.err == nil && len(fields) > 0 {
		p.err = fmt.Errorf("line %d: unexpected section: %s", line, fields[0])
	}
	return p.c, p.err
}

type parser struct {
	s       *bufio.Scanner
	rawLine string
	lineNo  int
	c       *ast.Contract
	err     error
}

func (p *parser) pos(line int) token.Position {
	return token.Position{Filename: "hasm", Line: line, Column: 1}
}

func (p *parser) contract(fields []string, line int) {
	if p.err != nil {
		return
	}
	if len(fields) == 0 || !strings.EqualFold(fields[0], "contract:") {
		p.err = fmt.Errorf("line %d: expected contract section", line)
	}
}

func (p *parser) constants(fields []string, line int) ([]string, int) {
	if p.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "constants:") {
		return fields, line
	}

	for fields, line = p.next(); p.err == nil && len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields, line = p.next() {
		if len(fields) < 2 {
			p.err = fmt.Errorf("line %d: invalid constant: expected name and kind", line)
			return fields, line
		}
		k := ast.Constant{Name: fields[0], Pos: p.pos(line)}
		switch strings.ToLower(fields[1]) {
		case "literal":
			if len(fields) != 3 {
				p.err = fmt.Errorf("line %d: literal constant requires a hex value", line)
				return fields, line
			}
			k.Kind = ast.ConstLiteral
			k.Value = fields[2]
		case "fsp":
			k.Kind = ast.ConstFreeStoragePointer
		default:
			p.err = fmt.Errorf("line %d: invalid constant kind: %s", line, fields[1])
			return fields, line
		}
		p.c.AddConstant(&k)
	}
	return fields, line
}

func (p *parser) tables(fields []string, line int) ([]string, int) {
	if p.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "tables:") {
		return fields, line
	}

	for fields, line = p.next(); p.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "table:"); {
		if len(fields) != 4 {
			p.err = fmt.Errorf("line %d: invalid table header: want 'table: NAME packed|padded SIZE'", line)
			return fields, line
		}
		t := ast.Table{Name: fields[1], Pos: p.pos(line)}
		switch strings.ToLower(fields[2]) {
		case "packed":
			t.Kind = ast.TablePacked
		case "padded":
			t.Kind = ast.TablePadded
		default:
			p.err = fmt.Errorf("line %d: invalid table kind: %s", line, fields[2])
			return fields, line
		}
		t.Size = int(p.uint(fields[3], line))

		for fields, line = p.next(); p.err == nil && len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields, line = p.next() {
			t.Statements = append(t.Statements, ast.Statement{Kind: ast.StmtLabelRef, Label: fields[0], Pos: p.pos(line)})
		}
		p.c.AddTable(&t)
	}
	return fields, line
}

func (p *parser) macro(fields []string, line int) ([]string, int) {
	if p.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "macro:") {
		return fields, line
	}
	if len(fields) != 4 {
		p.err = fmt.Errorf("line %d: invalid macro header: want 'macro: NAME TAKES RETURNS'", line)
		return p.next()
	}

	m := ast.MacroDefinition{Name: fields[1], Pos: p.pos(line)}
	m.Takes = int(p.uint(fields[2], line))
	m.Returns = int(p.uint(fields[3], line))

	fields, line = p.next()
	fields, line = p.params(&m, fields, line)
	fields, line = p.body(&m, fields, line)

	p.c.AddMacro(&m)
	return fields, line
}

func (p *parser) params(m *ast.MacroDefinition, fields []string, line int) ([]string, int) {
	if p.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "params:") {
		return fields, line
	}
	for fields, line = p.next(); p.err == nil && len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields, line = p.next() {
		m.Params = append(m.Params, ast.Param{Name: fields[0], Pos: p.pos(line)})
	}
	return fields, line
}

func (p *parser) body(m *ast.MacroDefinition, fields []string, line int) ([]string, int) {
	if p.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "body:") {
		return fields, line
	}

	for fields, line = p.next(); p.err == nil && len(fields) > 0 && !sections[strings.ToLower(fields[0])]; fields, line = p.next() {
		pos := p.pos(line)
		switch strings.ToLower(fields[0]) {
		case "raw":
			if len(fields) != 2 {
				p.err = fmt.Errorf("line %d: raw requires exactly one hex field", line)
				return fields, line
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRRawBytes, Hex: fields[1], Pos: pos})
		case "const":
			if len(fields) != 2 {
				p.err = fmt.Errorf("line %d: const requires exactly one name", line)
				return fields, line
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRConstantRef, Name: fields[1], Pos: pos})
		case "arg":
			if len(fields) != 2 {
				p.err = fmt.Errorf("line %d: arg requires exactly one name", line)
				return fields, line
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRArgRef, Name: fields[1], Pos: pos})
		case "label":
			if len(fields) != 2 {
				p.err = fmt.Errorf("line %d: label requires exactly one name", line)
				return fields, line
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRStatement, Pos: pos,
				Stmt: ast.Statement{Kind: ast.StmtLabelDef, Label: fields[1], Pos: pos}})
		case "labelref":
			if len(fields) != 2 {
				p.err = fmt.Errorf("line %d: labelref requires exactly one name", line)
				return fields, line
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRStatement, Pos: pos,
				Stmt: ast.Statement{Kind: ast.StmtLabelRef, Label: fields[1], Pos: pos}})
		case "invoke":
			if len(fields) < 2 {
				p.err = fmt.Errorf("line %d: invoke requires a callee name", line)
				return fields, line
			}
			args, err := parseArgs(fields[2:], line)
			if err != nil {
				p.err = err
				return fields, line
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRStatement, Pos: pos,
				Stmt: ast.Statement{Kind: ast.StmtMacroInvocation, Callee: fields[1], Args: args, Pos: pos}})
		case "codesize", "tablesize", "tablestart":
			if len(fields) != 2 {
				p.err = fmt.Errorf("line %d: %s requires exactly one argument", line, fields[0])
				return fields, line
			}
			var bk ast.BuiltinKind
			switch strings.ToLower(fields[0]) {
			case "codesize":
				bk = ast.BuiltinCodesize
			case "tablesize":
				bk = ast.BuiltinTablesize
			case "tablestart":
				bk = ast.BuiltinTablestart
			}
			m.Body = append(m.Body, ast.IRByte{Kind: ast.IRStatement, Pos: pos,
				Stmt: ast.Statement{Kind: ast.StmtBuiltinCall, Builtin: bk, BuiltinArg: fields[1], Pos: pos}})
		default:
			p.err = fmt.Errorf("line %d: unknown body item: %s", line, fields[0])
			return fields, line
		}
	}
	return fields, line
}

// parseArgs decodes invoke's positional argument fields, each formatted as
// "lit:<hex>", "id:<name>", or "arg:<name>".
func parseArgs(fields []string, line int) ([]ast.MacroArg, error) {
	args := make([]ast.MacroArg, 0, len(fields))
	for _, f := range fields {
		tag, rest, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid invoke argument: %s", line, f)
		}
		switch tag {
		case "lit":
			args = append(args, ast.MacroArg{Kind: ast.MacroArgLiteral, Hex: rest})
		case "id":
			args = append(args, ast.MacroArg{Kind: ast.MacroArgIdent, Name: rest})
		case "arg":
			args = append(args, ast.MacroArg{Kind: ast.MacroArgCall, Name: rest})
		default:
			return nil, fmt.Errorf("line %d: invalid invoke argument tag: %s", line, tag)
		}
	}
	return args, nil
}

func (p *parser) uint(s string, line int) uint64 {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: invalid unsigned integer: %s: %w", line, s, err)
	}
	return u
}

// next returns the fields of the next non-empty, non-comment line, along
// with its 1-based line number.
func (p *parser) next() ([]string, int) {
	p.rawLine = ""
	if p.err != nil {
		return nil, p.lineNo
	}
	for p.s.Scan() {
		p.lineNo++
		line := p.s.Text()
		fields := strings.Fields(line)
		if len(fields) != 0 && !strings.HasPrefix(fields[0], "#") {
			for i, fld := range fields {
				if strings.HasPrefix(fld, "#") {
					fields = fields[:i]
					break
				}
			}
			p.rawLine = line
			return fields, p.lineNo
		}
	}
	p.err = p.s.Err()
	return nil, p.lineNo
}

package hasm

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/huff-lang/huffc/ast"
)

// Print renders c back to its hasm textual form. Map-backed collections
// (constants, macros) are sorted by name first so output is deterministic
// across runs, since *swiss.Map iteration order is not.
func Print(c *ast.Contract) ([]byte, error) {
	d := &printer{buf: new(bytes.Buffer)}
	d.contract(c)
	if d.err != nil {
		return nil, d.err
	}
	return d.buf.Bytes(), nil
}

type printer struct {
	buf *bytes.Buffer
	err error
}

func (d *printer) contract(c *ast.Contract) {
	d.write("contract:\n")

	var names []string
	it := c.Constants.Iterator()
	for it.Next() {
		name, _ := it.Pair()
		names = append(names, name)
	}
	slices.Sort(names)
	if len(names) > 0 {
		d.write("\tconstants:\n")
		for _, name := range names {
			k, _ := c.Constants.Get(name)
			switch k.Kind {
			case ast.ConstLiteral:
				d.writef("\t\t%s literal %s\n", k.Name, k.Value)
			case ast.ConstFreeStoragePointer:
				d.writef("\t\t%s fsp\n", k.Name)
			}
		}
	}

	if len(c.Tables) > 0 {
		d.write("\ttables:\n")
		for _, t := range c.Tables {
			kind := "packed"
			if t.Kind == ast.TablePadded {
				kind = "padded"
			}
			d.writef("\t\ttable: %s %s %d\n", t.Name, kind, t.Size)
			for _, s := range t.Statements {
				d.writef("\t\t\t%s\n", s.Label)
			}
		}
	}
	d.write("\n")

	var macroNames []string
	mit := c.Macros.Iterator()
	for mit.Next() {
		name, _ := mit.Pair()
		macroNames = append(macroNames, name)
	}
	slices.Sort(macroNames)
	for i, name := range macroNames {
		if i > 0 {
			d.write("\n")
		}
		m, _ := c.Macros.Get(name)
		d.macro(m)
	}
}

func (d *printer) macro(m *ast.MacroDefinition) {
	d.writef("macro: %s %d %d\n", m.Name, m.Takes, m.Returns)

	if len(m.Params) > 0 {
		d.write("\tparams:\n")
		for _, p := range m.Params {
			d.writef("\t\t%s\n", p.Name)
		}
	}

	if len(m.Body) == 0 {
		return
	}
	d.write("\tbody:\n")
	for _, ir := range m.Body {
		switch ir.Kind {
		case ast.IRRawBytes:
			d.writef("\t\traw %s\n", ir.Hex)
		case ast.IRConstantRef:
			d.writef("\t\tconst %s\n", ir.Name)
		case ast.IRArgRef:
			d.writef("\t\targ %s\n", ir.Name)
		case ast.IRStatement:
			d.statement(ir.Stmt)
		}
	}
}

func (d *printer) statement(s ast.Statement) {
	switch s.Kind {
	case ast.StmtLabelDef:
		d.writef("\t\tlabel %s\n", s.Label)
	case ast.StmtLabelRef:
		d.writef("\t\tlabelref %s\n", s.Label)
	case ast.StmtMacroInvocation:
		d.writef("\t\tinvoke %s", s.Callee)
		for _, a := range s.Args {
			switch a.Kind {
			case ast.MacroArgLiteral:
				d.writef(" lit:%s", a.Hex)
			case ast.MacroArgIdent:
				d.writef(" id:%s", a.Name)
			case ast.MacroArgCall:
				d.writef(" arg:%s", a.Name)
			}
		}
		d.write("\n")
	case ast.StmtBuiltinCall:
		var kw string
		switch s.Builtin {
		case ast.BuiltinCodesize:
			kw = "codesize"
		case ast.BuiltinTablesize:
			kw = "tablesize"
		case ast.BuiltinTablestart:
			kw = "tablestart"
		}
		d.writef("\t\t%s %s\n", kw, s.BuiltinArg)
	}
}

func (d *printer) writef(format string, args ...any) {
	d.write(fmt.Sprintf(format, args...))
}

func (d *printer) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}

// Package ast defines the in-memory representation of a resolved Huff
// contract: the immutable AST consumed by the codegen core. Lexing, parsing
// and free-storage-pointer resolution all happen upstream of this package;
// by the time a *Contract reaches codegen it is assumed to be semantically
// complete (every Constant is a Literal, every macro invocation refers to a
// macro that exists, etc.); codegen surfaces violations of that assumption
// as errs.Error values rather than panicking.
package ast

import (
	"go/token"

	"github.com/dolthub/swiss"
)

// Contract is the root of a resolved Huff program. It is read-only once
// handed to the codegen package.
type Contract struct {
	Macros    *swiss.Map[string, *MacroDefinition]
	Constants *swiss.Map[string, *Constant]

	// Tables keeps declaration order, which matters: layout finalization
	// lays tables out in this order (§4.4). TablesByName mirrors it for
	// __tablesize/__tablestart lookups.
	Tables       []*Table
	TablesByName *swiss.Map[string, *Table]
}

// NewContract returns an empty Contract ready to be populated.
func NewContract() *Contract {
	return &Contract{
		Macros:       swiss.NewMap[string, *MacroDefinition](8),
		Constants:    swiss.NewMap[string, *Constant](8),
		TablesByName: swiss.NewMap[string, *Table](8),
	}
}

// Macro looks up a macro definition by name.
func (c *Contract) Macro(name string) (*MacroDefinition, bool) {
	return c.Macros.Get(name)
}

// Constant looks up a constant definition by name.
func (c *Contract) Constant(name string) (*Constant, bool) {
	return c.Constants.Get(name)
}

// Table looks up a jump table definition by name.
func (c *Contract) Table(name string) (*Table, bool) {
	return c.TablesByName.Get(name)
}

// AddMacro registers m on the contract, keyed by its name.
func (c *Contract) AddMacro(m *MacroDefinition) {
	c.Macros.Put(m.Name, m)
}

// AddConstant registers k on the contract, keyed by its name.
func (c *Contract) AddConstant(k *Constant) {
	c.Constants.Put(k.Name, k)
}

// AddTable registers t on the contract, appending to Tables and indexing it
// by name.
func (c *Contract) AddTable(t *Table) {
	c.Tables = append(c.Tables, t)
	c.TablesByName.Put(t.Name, t)
}

// Param is a single formal parameter of a macro definition. The identifier
// is optional only in the sense that some callers may not care about its
// name (e.g. a purely positional takes/returns check upstream); codegen
// always needs it to match argument positions by name.
type Param struct {
	Name string
	Pos  token.Position
}

// MacroDefinition is an immutable, named, parameterized macro body.
type MacroDefinition struct {
	Name    string
	Params  []Param
	Body    []IRByte // ordered body of intermediate byte items
	Takes   int
	Returns int
	Pos     token.Position
}

// ParamIndex returns the position of a parameter named name in m's parameter
// list, or -1 if there is none.
func (m *MacroDefinition) ParamIndex(name string) int {
	for i, p := range m.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// ConstKind distinguishes a constant's resolved value shape.
type ConstKind uint8

const (
	// ConstLiteral is a constant whose value is a ready-to-emit literal.
	ConstLiteral ConstKind = iota
	// ConstFreeStoragePointer marks a constant whose slot was never derived
	// to a literal by the (out-of-scope) storage-pointer pass. Reaching
	// codegen with one of these is a programmer error upstream.
	ConstFreeStoragePointer
)

// Constant is a top-level `constant NAME = ...` definition.
type Constant struct {
	Name  string
	Kind  ConstKind
	Value string // hex literal (even length, no 0x prefix), valid only if Kind == ConstLiteral
	Pos   token.Position
}

// TableKind distinguishes how wide each table entry is encoded.
type TableKind uint8

const (
	// TablePacked entries occupy 2 bytes each.
	TablePacked TableKind = iota
	// TablePadded entries occupy 32 bytes each (word-sized).
	TablePadded
)

// EntrySize returns the byte width of one entry for k.
func (k TableKind) EntrySize() int {
	if k == TablePadded {
		return 32
	}
	return 2
}

// Table is a Huff jump table: an ordered list of label references, each
// contributing one entry to the table's encoded bytes. Non-LabelRef
// statements are legal to store here (the parser need not enforce it) but
// contribute nothing when the table is emitted (§4.4, §9).
type Table struct {
	Name       string
	Kind       TableKind
	Size       int // declared size in bytes
	Statements []Statement
	Pos        token.Position
}

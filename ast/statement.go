package ast

import "go/token"

// IRKind tags the variant of an IRByte.
type IRKind uint8

const (
	// IRRawBytes is a literal run of already-hex-encoded bytes.
	IRRawBytes IRKind = iota
	// IRConstantRef names a top-level constant to substitute.
	IRConstantRef
	// IRStatement wraps a Statement (macro invocation, label def/ref,
	// builtin call).
	IRStatement
	// IRArgRef names an identifier to resolve via argument bubbling (§4.2).
	IRArgRef
)

// IRByte is one item of a macro's precomputed intermediate-representation
// byte sequence (§3: "IR byte item").
type IRByte struct {
	Kind  IRKind
	Hex   string    // valid when Kind == IRRawBytes; even-length hex
	Name  string    // valid when Kind == IRConstantRef or IRArgRef
	Stmt  Statement // valid when Kind == IRStatement
	Pos   token.Position
}

// StmtKind tags the variant of a Statement.
type StmtKind uint8

const (
	// StmtMacroInvocation calls another macro with a list of arguments.
	StmtMacroInvocation StmtKind = iota
	// StmtLabelDef declares a label at the current code offset.
	StmtLabelDef
	// StmtLabelRef references a label, to be resolved to its code offset.
	StmtLabelRef
	// StmtBuiltinCall invokes __codesize/__tablesize/__tablestart.
	StmtBuiltinCall
)

// BuiltinKind tags which compile-time builtin a StmtBuiltinCall invokes.
type BuiltinKind uint8

const (
	// BuiltinCodesize computes the byte length of a macro's expansion.
	BuiltinCodesize BuiltinKind = iota
	// BuiltinTablesize emits a table's declared size.
	BuiltinTablesize
	// BuiltinTablestart emits a table's absolute byte offset (a forward
	// reference resolved at layout finalization, §4.4).
	BuiltinTablestart
)

// Statement is one control/structural item inside a macro body (§3).
type Statement struct {
	Kind StmtKind
	Pos  token.Position

	// StmtMacroInvocation
	Callee string
	Args   []MacroArg

	// StmtLabelDef / StmtLabelRef
	Label string

	// StmtBuiltinCall
	Builtin     BuiltinKind
	BuiltinArg  string // macro or table name
}

// MacroArgKind tags the variant of a MacroArg.
type MacroArgKind uint8

const (
	// MacroArgLiteral is a 32-byte integer literal passed positionally.
	MacroArgLiteral MacroArgKind = iota
	// MacroArgCall forwards an argument from the calling macro's own
	// parameter list (resolved by recursing outward, §4.2 step 3c).
	MacroArgCall
	// MacroArgIdent is a bare identifier passed positionally, treated as a
	// label name (§4.2 step 3b).
	MacroArgIdent
)

// MacroArg is one positional argument of a macro invocation.
type MacroArg struct {
	Kind MacroArgKind
	Hex  string // valid when Kind == MacroArgLiteral; even-length hex
	Name string // valid when Kind == MacroArgCall or MacroArgIdent
}

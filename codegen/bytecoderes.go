// Package codegen implements the lowering of a resolved ast.Contract into
// hex-encoded EVM bytecode and a deployment artifact: the macro expander,
// argument resolver, and jump/layout finalizer described in spec.md §4,
// grounded directly on huff_codegen/src/lib.rs (see DESIGN.md).
package codegen

import "github.com/dolthub/swiss"

// codeByte is one emitted chunk of hex-encoded bytecode at a given absolute
// byte offset. Several of these make up a BytecodeRes.Bytes list; offsets are
// recorded so that later passes can locate and patch specific bytes without
// re-walking the whole structure.
type codeByte struct {
	offset int
	hex    string
}

// Jump records a reference to a label that has not yet been (or, for table
// instances, never is) resolved to a concrete code offset. ByteIndex means
// different things depending on where the Jump lives:
//   - inside a jumpTable (keyed by placeholder offset), it is a scratch
//     value, always 0 until promoted to an unmatched jump;
//   - inside BytecodeRes.UnmatchedJumps, it is the absolute offset at which
//     the placeholder entry starts (its PUSH2 opcode byte), the same key the
//     parent's jumpTable uses to find that entry;
//   - inside BytecodeRes.TableInstances, it is the absolute offset of the
//     __tablestart placeholder.
type Jump struct {
	Label     string
	ByteIndex int
}

// BytecodeRes is the result of expanding one macro (and everything it
// invokes) starting at some absolute offset. Offsets it records are always
// absolute (in the caller's coordinate system), never macro-local.
type BytecodeRes struct {
	Bytes          []codeByte
	LabelIndices   *swiss.Map[string, int]
	UnmatchedJumps []Jump
	TableInstances []Jump
}

func newBytecodeRes() *BytecodeRes {
	return &BytecodeRes{LabelIndices: swiss.NewMap[string, int](8)}
}

// Len returns the total emitted byte length (not hex character length).
func (r *BytecodeRes) Len() int {
	n := 0
	for _, b := range r.Bytes {
		n += len(b.hex) / 2
	}
	return n
}

// Hex concatenates all emitted bytes, in order, into one hex string.
func (r *BytecodeRes) Hex() string {
	var total int
	for _, b := range r.Bytes {
		total += len(b.hex)
	}
	buf := make([]byte, 0, total)
	for _, b := range r.Bytes {
		buf = append(buf, b.hex...)
	}
	return string(buf)
}

// merge appends child's bytes/labels/table-instances into r. Child offsets
// are already absolute (expanded starting at the offset the caller passed
// in), so no translation is needed here.
func (r *BytecodeRes) merge(child *BytecodeRes) {
	r.Bytes = append(r.Bytes, child.Bytes...)
	it := child.LabelIndices.Iterator()
	for it.Next() {
		name, off := it.Pair()
		r.LabelIndices.Put(name, off)
	}
	r.TableInstances = append(r.TableInstances, child.TableInstances...)
}

package codegen

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/huff-lang/huffc/ast"
	"github.com/huff-lang/huffc/errs"
	"github.com/huff-lang/huffc/internal/evm"
)

// finalizeLayout implements §4.4 (gen_table_bytecode): it appends the
// contract's jump tables after the code region and patches every
// __tablestart placeholder with the table's final byte offset. If res still
// carries unmatched label jumps (what bubbled all the way to the root), it
// fails with UnmatchedJumpLabel before laying anything out.
func finalizeLayout(res *BytecodeRes, tables []*ast.Table) (string, error) {
	if len(res.UnmatchedJumps) > 0 {
		labels := make([]string, len(res.UnmatchedJumps))
		for i, j := range res.UnmatchedJumps {
			labels[i] = j.Label
		}
		return "", errs.New(errs.UnmatchedJumpLabel, token.Position{}, strings.Join(labels, ", "),
			"%d label(s) never resolved to a code offset", len(res.UnmatchedJumps))
	}

	code := []byte(res.Hex())
	tableOffsets := map[string]int{}
	tableOffset := res.Len()

	for _, t := range tables {
		tableOffsets[t.Name] = tableOffset
		for _, stmt := range t.Statements {
			if stmt.Kind != ast.StmtLabelRef {
				continue
			}
			off, ok := res.LabelIndices.Get(stmt.Label)
			if !ok {
				log.Error("jump table entry references unknown label", "table", t.Name, "label", stmt.Label)
				code = append(code, []byte(strings.Repeat("0", t.Kind.EntrySize()*2))...)
				continue
			}
			entryHex := evm.Pad(fmt.Sprintf("%x", off), t.Kind.EntrySize())
			code = append(code, []byte(entryHex)...)
		}
		tableOffset += t.Size
	}

	for _, j := range res.TableInstances {
		offset, ok := tableOffsets[j.Label]
		if !ok {
			log.Error("__tablestart references unknown table", "table", j.Label)
			continue
		}
		start := 2*j.ByteIndex + 2
		end := start + 4
		if start < 0 || end > len(code) || string(code[start-2:start]) != "61" || string(code[start:end]) != "xxxx" {
			log.Error("tablestart placeholder missing or already patched", "table", j.Label, "offset", j.ByteIndex)
			continue
		}
		copy(code[start:end], evm.Pad(fmt.Sprintf("%x", offset), 2))
	}

	return string(code), nil
}

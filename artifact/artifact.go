// Package artifact defines the deployment artifact produced by a codegen
// run and its JSON serialization to disk, grounded on the reference
// lowering's Codegen::export (mkdir-p the parent directory, then write).
package artifact

import (
	"encoding/json"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/huff-lang/huffc/errs"
)

var tokenUnknown = token.Position{}

// Artifact is the serialized deployment product for a single contract.
type Artifact struct {
	Bytecode        string   `json:"bytecode"`
	Runtime         string   `json:"runtime"`
	File            string   `json:"file"`
	ABI             *abi.ABI `json:"abi,omitempty"`
	ConstructorArgs []string `json:"constructor_args,omitempty"`
}

// New builds an Artifact, lowercasing the hex fields.
func New(file, bytecode, runtime string) *Artifact {
	return &Artifact{
		File:     file,
		Bytecode: strings.ToLower(bytecode),
		Runtime:  strings.ToLower(runtime),
	}
}

// Write serializes a to path, creating any missing parent directories.
func Write(path string, a *Artifact) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.New(errs.IOError, tokenUnknown, path, "creating artifact directory: %v", err)
		}
	}

	encoded, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return errs.New(errs.IOError, tokenUnknown, path, "marshaling artifact: %v", err)
	}

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return errs.New(errs.IOError, tokenUnknown, path, "writing artifact: %v", err)
	}
	return nil
}

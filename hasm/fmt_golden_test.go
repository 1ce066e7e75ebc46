package hasm_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/huff-lang/huffc/hasm"
	"github.com/huff-lang/huffc/internal/filetest"
)

var testUpdateFmtTests = flag.Bool("test.update-fmt-tests", false, "If set, replace expected hasm fmt golden results with actual results.")

// TestFmtGolden parses each testdata/in/*.hasm fixture and re-prints it in
// canonical form, diffing the result (or the parse error) against the
// matching golden file in testdata/out.
func TestFmtGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".hasm") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			var output, errOutput string
			c, perr := hasm.Parse(src)
			if perr != nil {
				errOutput = perr.Error() + "\n"
			} else {
				printed, err := hasm.Print(c)
				if err != nil {
					t.Fatal(err)
				}
				output = string(printed)
			}

			filetest.DiffOutput(t, fi, output, resultDir, testUpdateFmtTests)
			filetest.DiffErrors(t, fi, errOutput, resultDir, testUpdateFmtTests)
		})
	}
}

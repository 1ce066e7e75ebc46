package maincmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mna/mainer"

	"github.com/huff-lang/huffc/artifact"
	"github.com/huff-lang/huffc/codegen"
	"github.com/huff-lang/huffc/hasm"
)

// Build lowers a hasm contract file to a deployment artifact.
func (c *Cmd) Build(_ context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	contract, err := hasm.Parse(src)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}

	ctorArgs, err := parseConstructorArgs(c.ConstructorArgs)
	if err != nil {
		return printError(stdio, err)
	}

	d := codegen.Driver{Contract: contract}
	res, err := d.Run(ctorArgs)
	if err != nil {
		return printError(stdio, err)
	}

	out := c.Output
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		out = filepath.Join("out", base+".json")
	}

	art := artifact.New(args[0], res.Bytecode, res.Runtime)
	if err := artifact.Write(out, art); err != nil {
		return printError(stdio, err)
	}

	fmt.Fprintf(stdio.Stdout, "wrote %s\n", out)
	return nil
}

// parseConstructorArgs decodes "<type>:<value>" flag values into
// codegen.ConstructorArg, supporting the handful of ABI types a Huff
// constructor typically takes.
func parseConstructorArgs(raw []string) ([]codegen.ConstructorArg, error) {
	out := make([]codegen.ConstructorArg, 0, len(raw))
	for _, r := range raw {
		typeName, value, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("invalid constructor argument %q: want \"<type>:<value>\"", r)
		}

		t, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return nil, fmt.Errorf("invalid constructor argument type %q: %w", typeName, err)
		}

		v, err := decodeArgValue(t, value)
		if err != nil {
			return nil, fmt.Errorf("invalid constructor argument value %q for type %q: %w", value, typeName, err)
		}
		out = append(out, codegen.ConstructorArg{Type: t, Value: v})
	}
	return out, nil
}

func decodeArgValue(t abi.Type, value string) (any, error) {
	switch t.T {
	case abi.BoolTy:
		return value == "true", nil
	case abi.AddressTy:
		return common.HexToAddress(value), nil
	case abi.StringTy:
		return value, nil
	case abi.BytesTy:
		return common.FromHex(value), nil
	case abi.FixedBytesTy:
		b := common.FromHex(value)
		arr := reflect.New(reflect.ArrayOf(t.Size, reflect.TypeOf(byte(0)))).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.IntTy, abi.UintTy:
		n, ok := new(big.Int).SetString(value, 0)
		if !ok {
			return nil, fmt.Errorf("not a valid integer: %s", value)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported constructor argument type: %s", t.String())
	}
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

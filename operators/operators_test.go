package operators

import (
	"reflect"
	"testing"

	"github.com/mvmjit/tplc/types"
)

func TestResultType(t *testing.T) {
	cases := []struct {
		op   string
		want types.Type
	}{
		{"store", types.Void},
		{"when", types.Void},
		{"guard", types.Void},
		{"lt", types.Flag},
		{"any", types.Flag},
		{"const_num", types.Num},
		{"load_num", types.Num},
		{"load", types.Reg},
		{"frobnicate", types.Reg},
	}
	for _, c := range cases {
		if got := ResultType(c.op); got != c.want {
			t.Errorf("ResultType(%q) = %v, want %v", c.op, got, c.want)
		}
	}
	for _, op := range []string{"if", "copy", "do", "add", "sub", "mul"} {
		if !IsPoly(op) {
			t.Errorf("expected %q to be polymorphic", op)
		}
	}
}

func TestOperandTypesDeclared(t *testing.T) {
	if got := OperandTypes("when", 2); !reflect.DeepEqual(got, []types.Type{types.Flag, types.Void}) {
		t.Errorf("when operands = %v", got)
	}
	if got := OperandTypes("call", 2); !reflect.DeepEqual(got, []types.Type{types.Reg, types.Arglist}) {
		t.Errorf("call operands = %v", got)
	}
	if got := OperandTypes("store", 2); !reflect.DeepEqual(got, []types.Type{types.Reg, types.Any}) {
		t.Errorf("store operands = %v", got)
	}
}

func TestOperandTypesFillRule(t *testing.T) {
	// "store" declares exactly two entries: reg repeats for every operand
	// but the last, which stays Any.
	got := OperandTypes("store", 4)
	want := []types.Type{types.Reg, types.Reg, types.Reg, types.Any}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("store(4) operands = %v, want %v", got, want)
	}
}

func TestOperandTypesDefaultReg(t *testing.T) {
	got := OperandTypes("add", 3)
	want := []types.Type{types.Reg, types.Reg, types.Reg}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("add(3) operands = %v, want %v", got, want)
	}
}

func TestSizeParamOperators(t *testing.T) {
	for _, op := range []string{"load", "load_num", "store", "store_num", "call", "const", "cast"} {
		if !HasSizeParam(op) {
			t.Errorf("expected %q to have a size parameter", op)
		}
	}
	if HasSizeParam("add") {
		t.Error("add should not have a size parameter")
	}
}

func TestDoubledOperandOpcodes(t *testing.T) {
	for _, op := range []string{IncI, DecI, IncU, DecU} {
		if !AllowsDoubledOperand(op) {
			t.Errorf("expected %q to allow the doubled operand exception", op)
		}
	}
	if AllowsDoubledOperand("load") {
		t.Error("load should not allow the doubled operand exception")
	}
}

// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package operators holds the fixed result-type and operand-type tables of
// §4.5 and the small per-operator exceptions of §4.6/§9 that the checker
// and tree compiler consult. The expression-operator catalog (§4.2) only
// carries arity; this package carries the type rules layered on top of it.
package operators

import "github.com/mvmjit/tplc/types"

// Named operator constants referenced by the polymorphism resolution in the
// checker and in typeinfer.
const (
	Do      = "do"
	DoV     = "dov"
	If      = "if"
	IfV     = "ifv"
	Copy    = "copy"
	Add     = "add"
	Sub     = "sub"
	Mul     = "mul"
	Discard = "discard"

	Arglist = "arglist"
	Carg    = "carg"

	IncI = "inc_i"
	DecI = "dec_i"
	IncU = "inc_u"
	DecU = "dec_u"
)

var voidResult = map[string]bool{
	"store": true, "store_num": true, "discard": true, "dov": true,
	"ifv": true, "when": true, "branch": true, "mark": true,
	"callv": true, "guard": true,
}

var flagResult = map[string]bool{
	"lt": true, "le": true, "eq": true, "ne": true, "ge": true, "gt": true,
	"nz": true, "zr": true, "all": true, "any": true,
}

var numResult = map[string]bool{
	"const_num": true, "load_num": true, "calln": true,
}

// polyResult operators are assigned a type by the polymorphism resolution
// rules in the checker's and typeinfer's resultType; ResultType alone
// cannot answer for them (it needs operand types), so IsPoly tells those
// callers to resolve the type against the operands instead.
var polyResult = map[string]bool{
	"if": true, "copy": true, "do": true, "add": true, "sub": true, "mul": true,
}

// IsVoid reports whether op's result type is always void.
func IsVoid(op string) bool { return voidResult[op] }

// IsFlag reports whether op's result type is always flag.
func IsFlag(op string) bool { return flagResult[op] }

// IsNum reports whether op's result type is always num.
func IsNum(op string) bool { return numResult[op] }

// IsPoly reports whether op's result type is polymorphic and must be
// resolved against its operands (§4.5 "Polymorphism resolution").
func IsPoly(op string) bool { return polyResult[op] }

// ResultType returns op's fixed result type. It must not be called for a
// polymorphic operator (IsPoly(op) == true) or for arglist/carg, which
// return themselves rather than a lattice member; the checker special-cases
// those before consulting ResultType.
func ResultType(op string) types.Type {
	switch {
	case IsVoid(op):
		return types.Void
	case IsFlag(op):
		return types.Flag
	case IsNum(op):
		return types.Num
	default:
		return types.Reg
	}
}

// declaredOperandTypes is the "Expected operand types per operator" table
// of §4.5. Operators absent from this map default every operand to reg, as
// the spec directs ("Otherwise, every operand defaults to reg").
var declaredOperandTypes = map[string][]types.Type{
	"when":  {types.Flag, types.Void},
	"call":  {types.Reg, types.Arglist},
	"store": {types.Reg, types.Any},
	"guard": {types.Void},
}

// OperandTypes returns the expected type for each of n operand positions of
// op, applying the fill/repeat rule of §4.5: if the declared list is
// shorter than n, its last entry repeats to fill — unless it has exactly
// two entries, in which case the first is repeated for every operand but
// the last, which takes the second entry.
func OperandTypes(op string, n int) []types.Type {
	declared, ok := declaredOperandTypes[op]
	if !ok || n == 0 {
		out := make([]types.Type, n)
		for i := range out {
			out[i] = types.Reg
		}
		return out
	}
	if len(declared) >= n {
		out := make([]types.Type, n)
		copy(out, declared[:n])
		return out
	}
	out := make([]types.Type, n)
	if len(declared) == 2 {
		for i := 0; i < n-1; i++ {
			out[i] = declared[0]
		}
		out[n-1] = declared[1]
		return out
	}
	copy(out, declared)
	last := declared[len(declared)-1]
	for i := len(declared); i < n; i++ {
		out[i] = last
	}
	return out
}

// sizeParamOperators designates the operators whose final parameter slot is
// a size (§4.6 "Size-parameter validation"). load_num/store_num/const/cast
// share load/store/call/const's addressing-size convention.
var sizeParamOperators = map[string]bool{
	"load": true, "load_num": true, "store": true, "store_num": true,
	"call": true, "const": true, "cast": true,
}

// HasSizeParam reports whether op designates one parameter position as a
// size operand.
func HasSizeParam(op string) bool { return sizeParamOperators[op] }

// largeConstOperators divert their value operand into the constant table
// instead of emitting it inline (§4.6 "Large / pointer constants").
var largeConstOperators = map[string]bool{
	"const_ptr": true, "const_large": true,
}

// IsLargeConst reports whether op stores its value operand in the constant
// table rather than inline.
func IsLargeConst(op string) bool { return largeConstOperators[op] }

// doubledOperandOpcodes is the ad hoc exception of §4.6/§9: these four
// opcodes accept operand references $0 or $1 unconditionally, regardless of
// their declared operand vector length, because the VM gives them an
// implicit doubled operand vector. This is deliberately not generalized
// into the operand-count-based validation (§9 "treat it as a dedicated
// case rather than generalizing it").
var doubledOperandOpcodes = map[string]bool{
	IncI: true, DecI: true, IncU: true, DecU: true,
}

// AllowsDoubledOperand reports whether opcode is one of the inc_i/dec_i/
// inc_u/dec_u opcodes that always accept $0 or $1.
func AllowsDoubledOperand(opcode string) bool { return doubledOperandOpcodes[opcode] }

// Find looks up op by name and reports whether it is a recognized operator
// constant from this package (one of the specially-handled operators
// above). No other package calls it.
func Find(op string) (string, bool) {
	switch op {
	case Do, DoV, If, IfV, Copy, Add, Sub, Mul, Discard, Arglist, Carg, IncI, DecI, IncU, DecU:
		return op, true
	default:
		return "", false
	}
}

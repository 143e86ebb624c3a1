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

// Package typeinfer holds the recursive result-type computation of §4.5
// used by the declaration linker, which needs a let: binding's type before
// any macro has been expanded. It reports no diagnostics. The full type
// checker (package checker) applies the same resolution rules with its own
// implementation after expansion and does not call this package.
package typeinfer

import (
	"strings"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/operators"
	"github.com/mvmjit/tplc/types"
)

// OperandEnv maps an opcode operand position to its expression type, per
// the §4.2 type mapping. catalog.OpcodeEntry satisfies this directly.
type OperandEnv interface {
	OperandType(n int) (types.Type, bool)
}

// Memo caches the inferred type of each already-visited node, so a shared
// subtree (the same NodeID reachable from more than one parent) is only
// ever computed once.
type Memo map[ast.NodeID]types.Type

// Infer returns the type of the subtree rooted at id, or false if it
// cannot yet be determined — because it references an operand position
// the env does not resolve, passes through an unexpanded macro call
// (`^name`, whose shape isn't known until the macro expander has run) or
// a bareword atom, or contains a polymorphic operator whose operands are
// missing or cannot be joined.
// A false return is not itself an error: callers decide whether an
// undetermined type is acceptable at the point they ask.
func Infer(arena *ast.Arena, env OperandEnv, id ast.NodeID, memo Memo) (types.Type, bool) {
	if t, ok := memo[id]; ok {
		return t, true
	}
	n := arena.Get(id)
	if n.Kind == ast.KindAtom {
		t, ok := inferAtom(n.Atom, env)
		if ok {
			memo[id] = t
		}
		return t, ok
	}
	if strings.HasPrefix(n.Operator, "^") {
		return 0, false
	}
	operandTypes := make([]types.Type, len(n.Operands))
	for i, o := range n.Operands {
		t, ok := Infer(arena, env, o, memo)
		if !ok {
			return 0, false
		}
		operandTypes[i] = t
	}
	t, ok := resultType(n.Operator, operandTypes)
	if ok {
		memo[id] = t
	}
	return t, ok
}

func inferAtom(atom string, env OperandEnv) (types.Type, bool) {
	if _, ok := ast.IsWriteRef(atom); ok {
		return types.Reg, true
	}
	if n, ok := ast.IsOperandRef(atom); ok {
		return env.OperandType(n)
	}
	if ast.IsNumber(atom) {
		return types.Num, true
	}
	return 0, false
}

// resultType resolves op's result type given the already-inferred types of
// its operands, applying the polymorphism-resolution rules of §4.5.
func resultType(op string, operandTypes []types.Type) (types.Type, bool) {
	switch op {
	case operators.Arglist:
		return types.Arglist, true
	case operators.Carg:
		return types.Carg, true
	}
	if !operators.IsPoly(op) {
		return operators.ResultType(op), true
	}
	if len(operandTypes) == 0 {
		return 0, false
	}
	switch op {
	case operators.If, operators.IfV:
		if len(operandTypes) < 3 {
			return 0, false
		}
		return types.Join(operandTypes[1], operandTypes[2])
	case operators.Do:
		return operandTypes[len(operandTypes)-1], true
	case operators.Copy:
		return operandTypes[0], true
	default:
		first := operandTypes[0]
		for _, t := range operandTypes[1:] {
			joined, ok := types.Join(first, t)
			if !ok {
				return 0, false
			}
			first = joined
		}
		return first, true
	}
}

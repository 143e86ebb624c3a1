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

// Package checker implements the type checker of §4.5. It runs after the
// declaration linker and the macro expander, so by the time it sees a
// tree, every name has already been resolved into a direct DAG reference
// and every `^macro` call site has already been replaced by its expansion:
// the checker only ever has to classify opcodes, operators, and operand
// references, never names.
package checker

import (
	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/catalog"
	"github.com/mvmjit/tplc/common"
	"github.com/mvmjit/tplc/operators"
	"github.com/mvmjit/tplc/types"
)

// Checker assigns a types.Type to every node of a linked, expanded tree.
type Checker struct {
	arena *ast.Arena
	opnds catalog.OpcodeEntry
	ops   catalog.OperatorCatalog
	errs  *typeErrors
	memo  map[ast.NodeID]types.Type
}

// New creates a Checker over arena. opnds supplies the $N operand-type
// mapping for the template currently being checked (§4.2); ops is the
// expression-operator catalog used to validate operand counts.
func New(arena *ast.Arena, opnds catalog.OpcodeEntry, ops catalog.OperatorCatalog, errs *common.Errors) *Checker {
	return &Checker{arena: arena, opnds: opnds, ops: ops, errs: &typeErrors{errs}, memo: map[ast.NodeID]types.Type{}}
}

// Check assigns and returns the type of the subtree rooted at id, per
// §4.5, reporting the first violation it finds (operator/position named)
// and aborting further recursion past that point, consistent with the
// "no local recovery" error model.
func (c *Checker) Check(id ast.NodeID) types.Type {
	if c.errs.HasErrors() {
		return types.Void
	}
	if t, ok := c.memo[id]; ok {
		return t
	}
	n := c.arena.Get(id)
	if n.Kind == ast.KindAtom {
		t := c.checkAtom(n)
		c.memo[id] = t
		return t
	}
	t := c.checkList(id, n)
	if !c.errs.HasErrors() {
		c.memo[id] = t
	}
	return t
}

func (c *Checker) checkAtom(n *ast.Node) types.Type {
	if _, ok := ast.IsWriteRef(n.Atom); ok {
		return types.Reg
	}
	if pos, ok := ast.IsOperandRef(n.Atom); ok {
		t, ok := c.opnds.OperandType(pos)
		if !ok {
			c.errs.ReportError(common.OperandRefOutOfRange, n.Loc, "operand reference $%d is out of range", pos)
			return types.Void
		}
		return t
	}
	if ast.IsNumber(n.Atom) {
		return types.Num
	}
	// A bareword parameter reached as a full expression (should not occur
	// in a well-formed operand position, but checked here rather than
	// panicking): treat as reg, the operator's default.
	return types.Reg
}

func (c *Checker) checkList(id ast.NodeID, n *ast.Node) types.Type {
	op := n.Operator
	if entry, ok := c.ops.Lookup(op); ok {
		// An operator's source-order children are its operand_count true
		// operands followed by its trailing param_count parameters (§4.2):
		// the catalog's two counts are independent, so arity is checked
		// against their sum, not operand_count alone.
		want := entry.OperandCount + entry.ParamCount
		if !entry.Variadic && len(n.Operands) != want {
			c.errs.arityMismatch(n.Loc, op, want, len(n.Operands))
			return types.Void
		}
	} else if !operators.IsVoid(op) && !operators.IsFlag(op) && !operators.IsNum(op) && !operators.IsPoly(op) &&
		op != operators.Arglist && op != operators.Carg {
		// The operator is neither in the external catalog nor one of the
		// fixed built-ins this package knows about.
		c.errs.unknownOperator(n.Loc, op)
		return types.Void
	}

	// Polymorphic operators (if, do, copy, add, sub, mul, ...) have their
	// operand types constrained by resultType's Join-based resolution, not
	// by the declared operand-type table: the table's "default every
	// operand to reg" fallback would otherwise wrongly demand a flag-typed
	// if condition be reg.
	checkDeclared := !operators.IsPoly(op)

	operandTypes := make([]types.Type, len(n.Operands))
	var expected []types.Type
	if checkDeclared {
		expected = operators.OperandTypes(op, len(n.Operands))
	}
	for i, o := range n.Operands {
		operandTypes[i] = c.Check(o)
		if c.errs.HasErrors() {
			return types.Void
		}
		if i < len(expected) && !types.Equivalent(expected[i], operandTypes[i]) {
			c.errs.operandTypeMismatch(n.Loc, op, i, expected[i], operandTypes[i])
			return types.Void
		}
	}

	return c.resultType(n, op, operandTypes)
}

// resultType computes op's result type given its already-validated operand
// types, applying the polymorphism-resolution rules of §4.5.
func (c *Checker) resultType(n *ast.Node, op string, operandTypes []types.Type) types.Type {
	switch op {
	case operators.Arglist:
		return types.Arglist
	case operators.Carg:
		return types.Carg
	}
	if !operators.IsPoly(op) {
		return operators.ResultType(op)
	}
	// A polymorphic operator outside the operator catalog skips the
	// operand-count check above entirely (it has no catalog.OperatorEntry
	// to check arity against), so every case below must re-validate it has
	// enough operands before indexing, the same way typeinfer.resultType
	// does for the identical reason.
	if len(operandTypes) == 0 {
		c.errs.arityMismatch(n.Loc, op, 1, 0)
		return types.Void
	}
	switch op {
	case operators.If, operators.IfV:
		if len(operandTypes) < 3 {
			c.errs.arityMismatch(n.Loc, op, 3, len(operandTypes))
			return types.Void
		}
		if operandTypes[0] != types.Flag {
			c.errs.flagOperandRequired(n.Loc, op, operandTypes[0])
			return types.Void
		}
		t, ok := types.Join(operandTypes[1], operandTypes[2])
		if !ok {
			c.errs.resultTypeMismatch(n.Loc, op, operandTypes[1], operandTypes[2])
			return types.Void
		}
		return t
	case operators.Do:
		return operandTypes[len(operandTypes)-1]
	case operators.Copy:
		return operandTypes[0]
	default:
		first := operandTypes[0]
		for _, t := range operandTypes[1:] {
			joined, ok := types.Join(first, t)
			if !ok {
				c.errs.resultTypeMismatch(n.Loc, op, first, t)
				return types.Void
			}
			first = joined
		}
		return first
	}
}

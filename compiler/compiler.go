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

// Package compiler implements the tree compiler of §4.6: it flattens a
// linked, macro-expanded, type-checked DAG into the flat template/desc
// representation described in §3, honoring the emit ordering, operand-
// reference validation, size-parameter validation, and large/pointer
// constant diversion the section specifies.
//
// Like the checker, it never walks a raw (unlinked or unexpanded) tree: by
// the time Compile runs, every $name has resolved to a direct DAG
// reference and every ^macro call has been spliced away, so the only
// atoms it ever classifies are operand references, write references,
// numbers, and barewords.
package compiler

import (
	"strconv"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/catalog"
	"github.com/mvmjit/tplc/common"
	"github.com/mvmjit/tplc/operators"
)

// upperSnake canonicalizes an operator name or bareword before it is
// textually prefixed, in place of a bare strings.ToUpper: the operator
// catalog's names may already be hyphenated or mixed-case (e.g.
// "const-ptr"), and UpperSnakeCase normalizes those the same way it would
// an already-conventional "const_ptr" (§6: emitted names are UPPER_SNAKE).
func upperSnake(s string) string {
	return strcase.UpperSnakeCase(s)
}

// Descriptor characters, one per template slot (§3 "Descriptor alphabet").
const (
	DescOperator byte = 'n' // operator name
	DescCount    byte = 's' // operand count of the preceding operator
	DescLink     byte = 'l' // link: index of another node within this template
	DescIndex    byte = 'i' // operand-index reference ($N)
	DescParam    byte = '.' // literal parameter (number or bareword enum)
	DescConst    byte = 'c' // constant-table index
)

// Template is the flattened output of compiling one expression (§3): a
// parallel template[]/desc[] pair plus the root slot's index.
type Template struct {
	Slots []string
	Desc  []byte
	Root  int
}

// Compiler flattens one expression tree into a Template, against a single
// opcode's operand vector, the expression-operator catalog, and a
// constant table shared across the whole compilation unit (§3 "the
// constant table lives for the entire compilation unit").
type Compiler struct {
	arena  *ast.Arena
	opnds  catalog.OpcodeEntry
	ops    catalog.OperatorCatalog
	consts *ConstantTable
	prefix string
	errs   *common.Errors

	memo  map[ast.NodeID]int
	slots []string
	desc  []byte
}

// New creates a Compiler for one template body. opnds is the opcode whose
// operand vector governs $N/\$N validation; ops is the expression-operator
// catalog, which splits each node's children into its operand_count
// operands (§4.6 step 2) and trailing param_count parameters (step 3);
// consts is the constant table for the whole compilation unit (the caller
// owns its lifetime); prefix is the configured textual prefix (§6, default
// "MVM_JIT_") prepended to every emitted operator name and bareword.
func New(arena *ast.Arena, opnds catalog.OpcodeEntry, ops catalog.OperatorCatalog, consts *ConstantTable, prefix string, errs *common.Errors) *Compiler {
	return &Compiler{
		arena:  arena,
		opnds:  opnds,
		ops:    ops,
		consts: consts,
		prefix: prefix,
		errs:   errs,
		memo:   map[ast.NodeID]int{},
	}
}

// Compile flattens the subtree rooted at id and returns the resulting
// Template. id must be a list node (a non-special expression); it is an
// internal invariant violation, not a reportable diagnostic, for a
// template's root to be a bare atom, since §4.7 always checks a
// template's result type before compiling.
func (c *Compiler) Compile(id ast.NodeID) Template {
	root := c.emitNode(id)
	return Template{Slots: c.slots, Desc: c.desc, Root: root}
}

// emitNode emits a single non-special node (§4.6 "Emission of a
// non-special node") and returns the template index of its `n` slot,
// reusing a prior emission via the node-identity memo so a node shared by
// two references in the source tree emits exactly once (§3 "Lifecycle",
// §8 "shared-subtree equality"). Nested expression operands are emitted
// first (post-order), so the node's own n/s/operand slots are contiguous
// and every `l` slot links back to an earlier index.
func (c *Compiler) emitNode(id ast.NodeID) int {
	if idx, ok := c.memo[id]; ok {
		return idx
	}
	if c.errs.HasErrors() {
		return 0
	}
	n := c.arena.Get(id)

	if operators.IsLargeConst(n.Operator) {
		return c.emitLargeConst(id, n)
	}

	operands, params := c.splitChildren(n.Operator, n.Operands)

	for _, o := range operands {
		child := c.arena.Get(o)
		if child.Kind != ast.KindList {
			continue
		}
		if _, ok := ast.IsMacroCallParam(child.Operator); !ok {
			c.emitNode(o)
		}
	}
	if c.errs.HasErrors() {
		return 0
	}

	nIdx := c.emitSlot(DescOperator, c.prefix+upperSnake(n.Operator))
	c.emitSlot(DescCount, strconv.Itoa(len(operands)))
	c.memo[id] = nIdx

	for _, o := range operands {
		c.emitOperand(o)
	}
	hasSize := operators.HasSizeParam(n.Operator)
	for _, p := range params {
		if hasSize {
			c.emitSizeParam(n.Operator, p)
		} else {
			c.emitParam(n.Operator, p)
		}
	}
	return nIdx
}

// splitChildren divides a node's children into its operand_count operands
// (§4.6 step 2, which may themselves be nested expressions, operand
// references, or literal atoms) and its trailing param_count parameters
// (step 3, always literal: number, bareword, or macro-call). Operators
// absent from the catalog (the fixed built-ins this package already knows
// by name — do, if, copy, add, ...) declare no parameters: every child is
// an operand. A variadic operator's operand_count is a declaration-time
// sentinel (§4.2), not a per-call count, so its operand count here is
// simply however many children are left after the operator's fixed
// param_count trailing parameters.
func (c *Compiler) splitChildren(op string, children []ast.NodeID) (operands, params []ast.NodeID) {
	entry, ok := c.ops.Lookup(op)
	if !ok || entry.ParamCount == 0 {
		return children, nil
	}
	split := len(children) - entry.ParamCount
	if split < 0 {
		split = 0
	}
	return children[:split], children[split:]
}

func (c *Compiler) emitSlot(d byte, text string) int {
	idx := len(c.slots)
	c.slots = append(c.slots, text)
	c.desc = append(c.desc, d)
	return idx
}

// emitOperand emits one operand per the three operand shapes of §4.6
// step 2: a nested expression, an operand/write reference, or (for a
// let:-free, already-linked tree) a bare literal atom. The enclosing
// expression operator has no bearing on $N/\$N validation: an operand
// reference always addresses the template's own opcode operand vector
// (c.opnds), not whatever expression-operator node happens to contain it.
func (c *Compiler) emitOperand(o ast.NodeID) {
	node := c.arena.Get(o)
	if node.Kind == ast.KindList {
		if _, ok := ast.IsMacroCallParam(node.Operator); ok {
			c.emitMacroCallParam(node)
			return
		}
		idx := c.emitNode(o)
		c.emitSlot(DescLink, strconv.Itoa(idx))
		return
	}
	c.emitAtomOperand(node)
}

func (c *Compiler) emitAtomOperand(node *ast.Node) {
	if n, ok := ast.IsWriteRef(node.Atom); ok {
		c.validateOperandRef(n, true, node.Loc)
		c.emitSlot(DescIndex, strconv.Itoa(n))
		return
	}
	if n, ok := ast.IsOperandRef(node.Atom); ok {
		c.validateOperandRef(n, false, node.Loc)
		c.emitSlot(DescIndex, strconv.Itoa(n))
		return
	}
	if ast.IsNumber(node.Atom) {
		c.emitSlot(DescParam, node.Atom)
		return
	}
	// A bareword reached in operand position: textually prefixed, per the
	// same rule §4.6 applies to bareword parameters.
	c.emitSlot(DescParam, c.prefix+upperSnake(node.Atom))
}

// validateOperandRef checks a $N/\$N reference against the template's own
// opcode operand vector (§4.6 "Operand-reference validation"). The
// inc_i/dec_i/inc_u/dec_u exception is keyed by that same opcode name
// (c.opnds.Name), since it is the opcode being compiled — not any nested
// expression operator — that carries the implicit doubled operand vector.
func (c *Compiler) validateOperandRef(n int, isWriteRef bool, loc common.Location) {
	if operators.AllowsDoubledOperand(c.opnds.Name) && (n == 0 || n == 1) {
		return
	}
	dir, ok := c.opnds.OperandDirection(n)
	if !ok {
		c.errs.ReportError(common.OperandRefOutOfRange, loc, "operand reference $%d is out of range", n)
		return
	}
	switch {
	case dir == catalog.Write && !isWriteRef:
		c.errs.ReportError(common.WriteRefMissing, loc, "operand $%d is a write operand and needs a \\$ sigil", n)
	case dir != catalog.Write && isWriteRef:
		c.errs.ReportError(common.WriteRefForbidden, loc, "operand $%d is not a write operand, \\$ sigil is forbidden", n)
	}
}

// emitMacroCallParam emits a macro-call parameter `(&macro p1 p2 …)` as a
// single textual `.` slot (§4.6 step 2's macro-call bullet), never recursing
// into it as an expression: its arguments are opaque text to the tree
// compiler, resolved by whatever later stage expands `macro(...)` textual
// parameters against the emitted descriptor stream.
func (c *Compiler) emitMacroCallParam(node *ast.Node) {
	name, _ := ast.IsMacroCallParam(node.Operator)
	args := make([]string, len(node.Operands))
	for i, a := range node.Operands {
		args[i] = c.arena.Get(a).Atom
	}
	c.emitSlot(DescParam, name+"("+strings.Join(args, ", ")+")")
}

// emitParam emits a trailing parameter slot that carries no size
// restriction: a macro-call parameter, a number, or any bareword (§4.6
// step 3's reuse of step 2's literal-parameter rules).
func (c *Compiler) emitParam(op string, o ast.NodeID) {
	node := c.arena.Get(o)
	if node.Kind == ast.KindList {
		if _, ok := ast.IsMacroCallParam(node.Operator); ok {
			c.emitMacroCallParam(node)
			return
		}
		c.errs.ReportError(common.ReadError, node.Loc, "operator %q: parameter must be a number, bareword, or macro call", op)
		return
	}
	if ast.IsNumber(node.Atom) {
		c.emitSlot(DescParam, node.Atom)
		return
	}
	c.emitSlot(DescParam, c.prefix+upperSnake(node.Atom))
}

// emitSizeParam validates and emits a size operand: it must be a macro
// call, a numeric literal, or a bareword ending in `_sz` (§4.6).
func (c *Compiler) emitSizeParam(op string, o ast.NodeID) {
	node := c.arena.Get(o)
	if node.Kind == ast.KindList {
		if _, ok := ast.IsMacroCallParam(node.Operator); ok {
			c.emitMacroCallParam(node)
			return
		}
		c.errs.ReportError(common.SizeParamBad, node.Loc, "operator %q: size operand must be a macro call, number, or *_sz bareword", op)
		return
	}
	if ast.IsNumber(node.Atom) {
		c.emitSlot(DescParam, node.Atom)
		return
	}
	if strings.HasSuffix(node.Atom, "_sz") {
		c.emitSlot(DescParam, c.prefix+upperSnake(node.Atom))
		return
	}
	c.errs.ReportError(common.SizeParamBad, node.Loc, "operator %q: size operand %q is neither macro, number, nor *_sz bareword", op, node.Atom)
}

// emitLargeConst emits a const_ptr/const_large node (§4.6 "Large / pointer
// constants"): its value operand is diverted into the shared constant
// table and referenced by a `c` slot instead of an `l` slot; an optional
// size operand, if present, follows as a `.` slot.
func (c *Compiler) emitLargeConst(id ast.NodeID, n *ast.Node) int {
	if len(n.Operands) == 0 {
		c.errs.ReportError(common.ReadError, n.Loc, "operator %q requires a value operand", n.Operator)
		return 0
	}
	value := c.arena.Get(n.Operands[0])
	if value.Kind != ast.KindAtom {
		c.errs.ReportError(common.TypeMismatch, n.Loc, "operator %q: value operand must be a literal", n.Operator)
		return 0
	}

	nIdx := c.emitSlot(DescOperator, c.prefix+upperSnake(n.Operator))
	c.emitSlot(DescCount, strconv.Itoa(len(n.Operands)))
	c.memo[id] = nIdx

	idx := c.consts.Register(value.Atom)
	c.emitSlot(DescConst, strconv.Itoa(idx))

	if len(n.Operands) > 1 {
		// §4.6 only requires this optional operand to "follow as a `.`
		// slot"; reusing emitSizeParam's stricter shape check (macro call,
		// number, or *_sz bareword) is intentional rather than an
		// oversight — a const_ptr/const_large's trailing operand plays the
		// identical size-parameter role as load/store's, and accepting
		// anything else there would silently admit a malformed size.
		c.emitSizeParam(n.Operator, n.Operands[1])
	}
	return nIdx
}

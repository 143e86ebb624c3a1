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

// Package linker implements the declaration linker of §4.3: it eliminates
// let: bindings before macro expansion ever sees them, so a macro body can
// never capture, or be captured by, a caller's names. The binding stack is
// modeled the way cel-go's checker.Scopes models block scoping — a stack
// of name-to-definition Groups, innermost last — even though here each
// Group holds at most the one let: form's own bindings, since the source
// language has no block statement other than let:.
package linker

import (
	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/common"
	"github.com/mvmjit/tplc/typeinfer"
	"github.com/mvmjit/tplc/types"
)

// env is the stack of name-to-NodeID bindings threaded through Link,
// innermost scope last. A name is looked up from the innermost scope
// outward, matching ordinary lexical shadowing.
type env struct {
	groups []map[string]ast.NodeID
}

func newEnv() *env {
	return &env{}
}

func (e *env) push() {
	e.groups = append(e.groups, map[string]ast.NodeID{})
}

func (e *env) pop() {
	e.groups = e.groups[:len(e.groups)-1]
}

func (e *env) bind(name string, id ast.NodeID) {
	e.groups[len(e.groups)-1][name] = id
}

func (e *env) find(name string) (ast.NodeID, bool) {
	for i := len(e.groups) - 1; i >= 0; i-- {
		if id, ok := e.groups[i][name]; ok {
			return id, true
		}
	}
	return 0, false
}

// Linker eliminates let: forms from a tree in place.
type Linker struct {
	arena *ast.Arena
	opnds typeinfer.OperandEnv
	errs  *common.Errors
	env   *env
	memo  typeinfer.Memo
}

// New creates a Linker over arena, whose $N atoms resolve through opnds
// (ordinarily the template's opcode catalog entry) and whose diagnostics
// are reported to errs.
func New(arena *ast.Arena, opnds typeinfer.OperandEnv, errs *common.Errors) *Linker {
	return &Linker{arena: arena, opnds: opnds, errs: errs, env: newEnv(), memo: typeinfer.Memo{}}
}

// Link rewrites the subtree rooted at id in place, per §4.3, and returns
// the NodeID that should stand in id's place: id itself for a list (only
// the Arena slot's contents at id may change, e.g. when id is a let:
// form), or the bound definition's NodeID when id is a `$name` atom (see
// linkAtom).
func (l *Linker) Link(id ast.NodeID) ast.NodeID {
	if l.errs.HasErrors() {
		return id
	}
	n := l.arena.Get(id)
	if n.Kind == ast.KindAtom {
		return l.linkAtom(id, n)
	}
	if n.Operator == "let:" {
		l.linkLet(id)
		return id
	}
	operands := make([]ast.NodeID, len(n.Operands))
	copy(operands, n.Operands)
	for i, o := range operands {
		operands[i] = l.Link(o)
	}
	l.arena.Replace(id, ast.Node{Kind: ast.KindList, Operator: n.Operator, Operands: operands, Loc: n.Loc})
	return id
}

// linkAtom resolves a `$name` atom (non-numeric name) to its bound
// subtree, per §4.3 step 5, by returning the bound definition's own NodeID
// in place of id: the caller (Link's list-rewrite loop) installs that
// returned id directly into the parent's operand list, so every reference
// to $name ends up pointing at the exact same node the definition itself
// occupies — not a copy of it — which is what lets the tree compiler's
// node-identity memo single-emit a shared binding (§8 "shared-subtree
// equality"). `$N`, `\$N`, and other reference forms (macro params, macro
// names, macro-call params) are left untouched: they are resolved by later
// stages, not the linker.
func (l *Linker) linkAtom(id ast.NodeID, n *ast.Node) ast.NodeID {
	name, ok := ast.IsNamedRef(n.Atom)
	if !ok {
		return id
	}
	bound, found := l.env.find(name)
	if !found {
		l.errs.ReportError(common.UnboundName, n.Loc, "unbound name %q", name)
		return id
	}
	return bound
}

// linkLet implements §4.3 steps 1-4 for a `let:` form.
func (l *Linker) linkLet(id ast.NodeID) {
	n := l.arena.Get(id)
	if len(n.Operands) == 0 {
		l.errs.ReportError(common.ReadError, n.Loc, "let: requires a declaration list and at least one body")
		return
	}
	declList := l.arena.Get(n.Operands[0])
	bodies := n.Operands[1:]
	if len(bodies) == 0 {
		l.errs.ReportError(common.ReadError, n.Loc, "let: requires at least one body expression")
		return
	}

	l.env.push()
	defer l.env.pop()

	var discards []ast.NodeID
	for _, declID := range declList.Operands {
		decl := l.arena.Get(declID)
		name, ok := ast.IsNamedRef(decl.Operator)
		if decl.Kind != ast.KindList || !ok || len(decl.Operands) != 1 {
			l.errs.ReportError(common.ReadError, decl.Loc, "let: declaration must be ($name definition)")
			return
		}
		definition := l.Link(decl.Operands[0])
		if l.errs.HasErrors() {
			return
		}
		if t, ok := typeinfer.Infer(l.arena, l.opnds, definition, l.memo); ok && t != types.Reg && t != types.Num && t != types.Any {
			l.errs.ReportError(common.TypeMismatch, decl.Loc,
				"let: binding %q has type %v, want reg or num", name, t)
			return
		}
		l.env.bind(name, definition)
		discards = append(discards, l.arena.NewList("discard", []ast.NodeID{definition}, decl.Loc))
	}

	linkedBodies := make([]ast.NodeID, len(bodies))
	for i, b := range bodies {
		linkedBodies[i] = l.Link(b)
	}
	if l.errs.HasErrors() {
		return
	}

	lastType, _ := typeinfer.Infer(l.arena, l.opnds, linkedBodies[len(linkedBodies)-1], l.memo)
	head := "dov"
	if lastType != types.Void {
		head = "do"
	}
	l.arena.Replace(id, ast.Node{
		Kind:     ast.KindList,
		Operator: head,
		Operands: append(discards, linkedBodies...),
		Loc:      n.Loc,
	})
}

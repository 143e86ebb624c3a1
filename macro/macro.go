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

// Package macro implements the hygienic macro expander of §4.4: macro
// bodies are registered once (already linked, per §4.3, so they carry no
// free user names) and every `^name` call site is replaced, depth-first,
// by a fresh instance of the registered body with its `,name` placeholders
// substituted. The substitution walk is a structural rewrite over
// ast.NodeID exactly the way a Go source-to-source macro preprocessor
// walks go/ast and replaces *ast.Ident params by call-site *ast.Expr
// arguments — the one addition a tree shared by NodeID needs is a
// per-expansion memo so a sub-list referenced twice in the macro body
// becomes one shared node in the instance, not two independent copies.
package macro

import (
	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/common"
)

// Def is a registered macro: its formal parameter names, in order, and its
// linked body.
type Def struct {
	Params []string
	Body   ast.NodeID
}

// Expander expands macro calls against a registry built up by Define.
type Expander struct {
	arena   *ast.Arena
	errs    *common.Errors
	defined map[string]Def
}

// New creates an Expander over arena, reporting diagnostics to errs.
func New(arena *ast.Arena, errs *common.Errors) *Expander {
	return &Expander{arena: arena, errs: errs, defined: map[string]Def{}}
}

// Define registers name with the given formal parameters and an
// already-linked body. A redefinition is an error, per §4.7's "duplicate
// top-level forms" posture extended to macros (mirrors RedefinedOpcode).
func (e *Expander) Define(name string, params []string, body ast.NodeID) {
	if _, exists := e.defined[name]; exists {
		e.errs.ReportError(common.RedefinedMacro, e.arena.Get(body).Loc, "macro %q is already defined", name)
		return
	}
	e.defined[name] = Def{Params: params, Body: body}
}

// Lookup returns the registered macro named name, if any.
func (e *Expander) Lookup(name string) (Def, bool) {
	d, ok := e.defined[name]
	return d, ok
}

// Expand rewrites the subtree rooted at id in place, depth-first, per
// §4.4. It returns id unchanged; only the Arena slot's contents may
// change, at id and at every macro call site beneath it.
func (e *Expander) Expand(id ast.NodeID) ast.NodeID {
	if e.errs.HasErrors() {
		return id
	}
	n := e.arena.Get(id)
	if n.Kind == ast.KindAtom {
		return id
	}

	operands := make([]ast.NodeID, len(n.Operands))
	copy(operands, n.Operands)
	for i, o := range operands {
		operands[i] = e.Expand(o)
	}
	e.arena.Replace(id, ast.Node{Kind: ast.KindList, Operator: n.Operator, Operands: operands, Loc: n.Loc})
	if e.errs.HasErrors() {
		return id
	}

	name, ok := ast.IsMacroName(n.Operator)
	if !ok {
		return id
	}
	def, ok := e.defined[name]
	if !ok {
		e.errs.ReportError(common.UnknownMacro, n.Loc, "undefined macro %q", name)
		return id
	}
	if len(operands) != len(def.Params) {
		e.errs.ReportError(common.MacroArity, n.Loc,
			"macro %q takes %d argument(s), got %d", name, len(def.Params), len(operands))
		return id
	}

	args := make(map[string]ast.NodeID, len(def.Params))
	for i, p := range def.Params {
		args[p] = operands[i]
	}
	memo := map[ast.NodeID]ast.NodeID{}
	instance := e.instantiate(def.Body, args, memo)
	inst := e.arena.Get(instance)
	e.arena.Replace(id, *inst)
	return id
}

// instantiate builds a fresh copy of the subtree rooted at src, replacing
// each `,name` atom by args[name] and memoizing by src's own NodeID so
// that a sub-list referenced more than once in the macro body yields one
// shared node in the instance (§4.4 step 3's DAG-preserving requirement).
func (e *Expander) instantiate(src ast.NodeID, args map[string]ast.NodeID, memo map[ast.NodeID]ast.NodeID) ast.NodeID {
	if copyID, ok := memo[src]; ok {
		return copyID
	}
	n := e.arena.Get(src)
	if n.Kind == ast.KindAtom {
		if name, ok := ast.IsMacroParam(n.Atom); ok {
			arg, ok := args[name]
			if !ok {
				e.errs.ReportError(common.UnmatchedMacroParam, n.Loc, "unmatched macro parameter %q", name)
				return src
			}
			memo[src] = arg
			return arg
		}
		id := e.arena.NewAtom(n.Atom, n.Loc)
		memo[src] = id
		return id
	}

	operands := make([]ast.NodeID, len(n.Operands))
	// Reserve the copy's id before recursing, so that if src is reachable
	// from one of its own operands through some other path the memo still
	// resolves (in practice macro bodies are acyclic, but the seam costs
	// nothing to leave in place).
	placeholder := e.arena.NewList(n.Operator, nil, n.Loc)
	memo[src] = placeholder
	for i, o := range n.Operands {
		operands[i] = e.instantiate(o, args, memo)
	}
	e.arena.Replace(placeholder, ast.Node{Kind: ast.KindList, Operator: n.Operator, Operands: operands, Loc: n.Loc})
	return placeholder
}

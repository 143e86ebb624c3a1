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

package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/text/cases"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/catalog"
	"github.com/mvmjit/tplc/checker"
	"github.com/mvmjit/tplc/common"
	"github.com/mvmjit/tplc/compiler"
	"github.com/mvmjit/tplc/linker"
	"github.com/mvmjit/tplc/macro"
	"github.com/mvmjit/tplc/reader"
	"github.com/mvmjit/tplc/types"
)

// fold is the case-insensitive comparison used for the three top-level
// keywords (macro:/template:/include:): the source text is UTF-8 (§6), so
// keyword recognition case-folds with golang.org/x/text/cases rather than
// the ASCII-only strings.EqualFold.
var fold = cases.Fold()

func isKeyword(operator, keyword string) bool {
	return fold.String(operator) == fold.String(keyword)
}

// FileOpener opens a named include/input path for reading. The default,
// OSFileOpener, wraps os.Open; tests substitute an in-memory implementation.
type FileOpener func(path string) (io.ReadCloser, error)

// OSFileOpener is the default FileOpener, backed by the local filesystem.
func OSFileOpener(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Driver runs the file driver of §4.7 over one top-level input, threading a
// single arena, macro registry, and constant table through every file it
// visits (directly, or via include:).
type Driver struct {
	cfg   Config
	cat   catalog.OpcodeCatalog
	ops   catalog.OperatorCatalog
	open  FileOpener
	arena *ast.Arena
	errs  *common.Errors

	expander *macro.Expander
	consts   *compiler.ConstantTable
	included map[string]bool
}

// New creates a Driver. cat and ops are the external opcode and
// expression-operator catalogs (§4.2); open resolves include: and the
// top-level input path to a readable stream, defaulting to OSFileOpener
// when nil.
func New(cfg Config, cat catalog.OpcodeCatalog, ops catalog.OperatorCatalog, open FileOpener) *Driver {
	if open == nil {
		open = OSFileOpener
	}
	arena := ast.NewArena()
	errs := common.NewErrors()
	return &Driver{
		cfg:      cfg,
		cat:      cat,
		ops:      ops,
		open:     open,
		arena:    arena,
		errs:     errs,
		expander: macro.New(arena, errs),
		consts:   compiler.NewConstantTable(),
		included: map[string]bool{},
	}
}

// Result is everything a completed run produces: the merged per-opcode
// record table and the shared constant table.
type Result struct {
	Records *RecordTable
	Consts  *compiler.ConstantTable
}

// Run processes d's configured Input and every file it transitively
// includes, returning the first diagnostic reported by any stage, if any.
func (d *Driver) Run() (*Result, *common.Error) {
	records, err := d.processPath(d.cfg.Input)
	if err != nil {
		return nil, err
	}
	if d.errs.HasErrors() {
		return nil, d.errs.First()
	}
	return &Result{Records: records, Consts: d.consts}, nil
}

// processPath opens path (or stdin, for "-") and processes its top-level
// forms into a freshly-built RecordTable scoped to this file and whatever
// it includes.
func (d *Driver) processPath(path string) (*RecordTable, *common.Error) {
	var r io.Reader
	var closer io.Closer
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := d.open(path)
		if err != nil {
			return nil, &common.Error{Kind: common.IncludeMissing, Location: common.NoLocation,
				Message: fmt.Sprintf("cannot open %q: %v", path, err)}
		}
		r, closer = f, f
	}
	if closer != nil {
		defer closer.Close()
	}
	return d.processForms(path, r), nil
}

// processForms reads every top-level form of the file named name from r and
// dispatches it to registerMacro/processTemplate/processInclude, building up
// a RecordTable scoped to this one file (its own template: forms, plus
// whatever its own include: forms merge in).
func (d *Driver) processForms(name string, r io.Reader) *RecordTable {
	records := NewRecordTable()
	rd := reader.New(d.arena, d.errs, name, r)
	forms := rd.ReadAll()
	for _, id := range forms {
		if d.errs.HasErrors() {
			return records
		}
		n := d.arena.Get(id)
		switch {
		case isKeyword(n.Operator, "macro:"):
			d.registerMacro(n)
		case isKeyword(n.Operator, "template:"):
			d.processTemplate(n, records)
		case isKeyword(n.Operator, "include:"):
			d.processInclude(n, records)
		default:
			d.errs.ReportError(common.UnknownKeyword, n.Loc, "unknown top-level form %q", n.Operator)
		}
	}
	return records
}

// registerMacro implements the `(macro: name (params…) body)` form of §4.7:
// the body is linked with no operand environment (its $N meaning is only
// fixed once instantiated into a template, §4.4), then stored; the
// Expander itself expands any nested macro calls against the
// currently-registered set and rejects a redefinition.
func (d *Driver) registerMacro(n *ast.Node) {
	if len(n.Operands) != 3 {
		d.errs.ReportError(common.ReadError, n.Loc, "macro: requires a name, a parameter list, and a body")
		return
	}
	name := d.arena.Get(n.Operands[0]).Atom
	params, ok := d.paramNames(n.Operands[1])
	if !ok {
		return
	}

	l := linker.New(d.arena, noOperandEnv{}, d.errs)
	body := l.Link(n.Operands[2])
	if d.errs.HasErrors() {
		return
	}
	body = d.expander.Expand(body)
	if d.errs.HasErrors() {
		return
	}
	d.expander.Define(name, params, body)
}

// paramNames reads a macro's `(params…)` list. The reader treats a
// non-empty parenthesized list of atoms the ordinary way: the first atom
// becomes the node's Operator and the rest become Operands, so the full
// parameter name sequence is Operator followed by every Operand's text. An
// empty list `()` reads as Operator "" with no Operands and yields no
// parameters; any other list with an empty Operator starts with a nested
// list and is rejected.
func (d *Driver) paramNames(id ast.NodeID) ([]string, bool) {
	n := d.arena.Get(id)
	if n.Kind != ast.KindList {
		d.errs.ReportError(common.ReadError, n.Loc, "macro: parameter list must be a parenthesized list of names")
		return nil, false
	}
	if n.Operator == "" && len(n.Operands) == 0 {
		return nil, true
	}
	if n.Operator == "" {
		d.errs.ReportError(common.ReadError, n.Loc, "macro: parameter list must not start with a nested list")
		return nil, false
	}
	names := make([]string, 0, 1+len(n.Operands))
	names = append(names, n.Operator)
	for _, o := range n.Operands {
		names = append(names, d.arena.Get(o).Atom)
	}
	return names, true
}

// processTemplate implements the `(template: opcode expr)` form of §4.7.
func (d *Driver) processTemplate(n *ast.Node, records *RecordTable) {
	if len(n.Operands) != 2 {
		d.errs.ReportError(common.ReadError, n.Loc, "template: requires an opcode and a body expression")
		return
	}
	opcodeAtom := d.arena.Get(n.Operands[0])
	name, destructive := opcodeAtom.Atom, false
	if strings.HasSuffix(name, "!") {
		name, destructive = name[:len(name)-1], true
	}

	entry, ok := d.cat.Lookup(name)
	if !ok {
		d.errs.ReportError(common.UnknownOpcode, opcodeAtom.Loc, "unknown opcode %q", name)
		return
	}
	if records.Has(name) {
		d.errs.ReportError(common.RedefinedOpcode, n.Loc, "opcode %q is already defined", name)
		return
	}

	if destructive {
		if _, ok := entry.WriteOperandIndex(); !ok {
			d.errs.ReportError(common.DestructiveNoWrite, n.Loc,
				"opcode %q is destructive but declares no write operand", name)
			return
		}
	}

	l := linker.New(d.arena, entry, d.errs)
	body := l.Link(n.Operands[1])
	if d.errs.HasErrors() {
		return
	}
	body = d.expander.Expand(body)
	if d.errs.HasErrors() {
		return
	}

	chk := checker.New(d.arena, entry, d.ops, d.errs)
	got := chk.Check(body)
	if d.errs.HasErrors() {
		return
	}
	if want := expectedResultType(entry, destructive); !types.Equivalent(got, want) {
		d.errs.ReportError(common.TypeMismatch, n.Loc,
			"template: %q produces type %v, opcode expects %v", name, got, want)
		return
	}

	glog.V(1).Infof("compiling template: %s (destructive=%v)", name, destructive)
	comp := compiler.New(d.arena, entry, d.ops, d.consts, d.cfg.prefix(), d.errs)
	tmpl := comp.Compile(body)
	if d.errs.HasErrors() {
		return
	}
	records.Append(name, destructive, tmpl)
}

// expectedResultType computes a template's required result type (§4.7):
// void when the opcode is invoked destructively or declares no write
// operand, otherwise the mapped type of its write operand.
func expectedResultType(entry catalog.OpcodeEntry, destructive bool) types.Type {
	if destructive {
		return types.Void
	}
	idx, ok := entry.WriteOperandIndex()
	if !ok {
		return types.Void
	}
	t, _ := entry.OperandType(idx)
	return t
}

// processInclude implements the `(include: "path")` form of §4.7: it
// recursively parses the named file against the same macro registry, and
// merges its compiled records into the caller's table, offsetting
// template-offsets by the caller's current length. A path already included
// anywhere in this run is skipped with a warning rather than reprocessed.
// Cyclic includes are not reported as errors: since a path is marked before
// it is processed, a cycle ends at the first repeated include: path. The
// top-level input path is not marked, so a file that includes it causes it
// to be processed once more.
func (d *Driver) processInclude(n *ast.Node, records *RecordTable) {
	if !d.cfg.Include {
		d.errs.ReportError(common.UnknownKeyword, n.Loc, "include: is disabled by configuration")
		return
	}
	if len(n.Operands) != 1 {
		d.errs.ReportError(common.ReadError, n.Loc, "include: requires a single path string")
		return
	}
	path := unquote(d.arena.Get(n.Operands[0]).Atom)

	if d.included[path] {
		glog.Warningf("ignoring duplicate include: %q", path)
		return
	}
	d.included[path] = true

	glog.V(1).Infof("entering include: %s", path)
	sub, err := d.processPath(path)
	glog.V(1).Infof("leaving include: %s", path)
	if err != nil {
		d.errs.ReportError(err.Kind, n.Loc, "%s", err.Message)
		return
	}
	if d.errs.HasErrors() {
		return
	}
	for _, r := range sub.Records {
		if records.Has(r.Opcode) {
			d.errs.ReportError(common.RedefinedOpcode, n.Loc,
				"opcode %q from included file %q is already defined", r.Opcode, path)
			return
		}
	}
	records.Merge(sub)
}

// unquote strips the surrounding double quotes the reader preserves on a
// scanner.String token (§4.1); a path atom that was not quoted is returned
// unchanged.
func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}

// noOperandEnv is the "no environment" of §4.4's macro-body linking: a
// macro body's $N operand references have no fixed meaning until it is
// instantiated into a specific template, so every lookup reports
// undetermined rather than resolving against some opcode's operand vector.
type noOperandEnv struct{}

func (noOperandEnv) OperandType(int) (types.Type, bool) { return 0, false }

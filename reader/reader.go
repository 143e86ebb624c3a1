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

// Package reader implements the S-expression reader of §4.1: it turns a
// character stream into a sequence of top-level expression trees in an
// ast.Arena. Tokenizing is hand-rolled on top of text/scanner the way
// db47h/ngaro's assembler tokenizes Forth source — a custom IsIdentRune
// predicate widens what counts as a bareword, since our atoms (barewords,
// $N references, ,name macro params, ^name macro calls, &name macro-call
// params) look nothing like Go identifiers.
package reader

import (
	"io"
	"io/ioutil"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/common"
)

// Reader reads a sequence of top-level S-expressions from a single source.
type Reader struct {
	s     scanner.Scanner
	arena *ast.Arena
	errs  *common.Errors
	src   common.Source
}

// New creates a Reader over r, reporting errors against errs and attaching
// common.Location values derived from name/contents to every node it
// creates in arena. r is read to completion up front so that a
// common.TextSource can back every reported Location with the file name
// and a line Snippet (common.Error.ToDisplayString), not just a bare
// line:column pair.
func New(arena *ast.Arena, errs *common.Errors, name string, r io.Reader) *Reader {
	rd := &Reader{arena: arena, errs: errs}
	contents, err := ioutil.ReadAll(r)
	if err != nil {
		errs.ReportError(common.ReadError, common.NoLocation, "reading %q: %v", name, err)
	}
	rd.src = common.NewTextSource(name, string(contents))
	rd.s.Init(strings.NewReader(string(contents)))
	rd.s.Filename = name
	rd.s.Mode = scanner.ScanIdents | scanner.ScanStrings
	rd.s.IsIdentRune = isAtomRune
	rd.s.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '
	rd.s.Error = func(_ *scanner.Scanner, msg string) {
		rd.reportAt(rd.s.Position, msg)
	}
	return rd
}

// isAtomRune widens scanner.Ident to accept the full bareword/reference
// alphabet: letters, digits, and the punctuation our atom forms use
// ($, \, ,, ^, &, _, :, !, ., -, `). Parentheses, '#' and whitespace remain
// delimiters.
func isAtomRune(ch rune, i int) bool {
	if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
		return true
	}
	switch ch {
	case '$', '\\', ',', '^', '&', '_', ':', '!', '.', '-', '`':
		return true
	}
	return false
}

func (r *Reader) loc() common.Location {
	p := r.s.Position
	if !p.IsValid() {
		p = r.s.Pos()
	}
	return common.NewSourceLocation(r.src, p.Line, p.Column)
}

func (r *Reader) reportAt(p scanner.Position, format string, args ...interface{}) {
	loc := common.NewSourceLocation(r.src, p.Line, p.Column)
	r.errs.ReportError(common.ReadError, loc, format, args...)
}

// scan returns the next non-comment token, skipping '#'-to-end-of-line
// comments (§4.1 "the host convention of the source files").
func (r *Reader) scan() rune {
	for {
		tok := r.s.Scan()
		if tok != '#' {
			return tok
		}
		for {
			ch := r.s.Next()
			if ch == '\n' || ch == scanner.EOF {
				break
			}
		}
	}
}

// ReadAll reads every top-level form until end of input, returning their
// NodeIDs in order. It stops early once the accumulated common.Errors
// reports an error, per the "no local recovery" error model.
func (r *Reader) ReadAll() []ast.NodeID {
	var forms []ast.NodeID
	for {
		tok := r.scan()
		if tok == scanner.EOF {
			return forms
		}
		if r.errs.HasErrors() {
			return forms
		}
		if tok != '(' {
			r.reportAt(r.s.Position, "expected '(' to start a top-level form, got %q", r.s.TokenText())
			return forms
		}
		id, ok := r.readList()
		if !ok {
			return forms
		}
		forms = append(forms, id)
	}
}

// readList reads the operands of a list form whose opening '(' has already
// been consumed, up to and including its closing ')'.
//
// Most lists have an atom in head position (an opcode, operator, or
// keyword name) and that atom becomes the Node's Operator. But a let:
// declaration list is a bare sequence of (name definition) pairs, so its
// own head position holds a nested list rather than an atom — e.g. in
// `(let: (($foo (copy $1))) ...)` the declaration list's first and only
// element is `($foo (copy $1))`. Such a list is read "headless": Operator
// stays empty and every element, including what would otherwise be the
// head, lands in Operands.
func (r *Reader) readList() (ast.NodeID, bool) {
	startLoc := r.loc()
	tok := r.scan()
	if tok == scanner.EOF {
		r.reportAt(r.s.Position, "unexpected end of input inside a list")
		return 0, false
	}

	var operator string
	var operands []ast.NodeID
	switch tok {
	case ')':
		return r.arena.NewList("", nil, startLoc), true
	case '(':
		id, ok := r.readList()
		if !ok {
			return 0, false
		}
		operands = append(operands, id)
	default:
		operator = r.s.TokenText()
	}

	for {
		tok = r.scan()
		switch tok {
		case scanner.EOF:
			r.reportAt(r.s.Position, "unbalanced parentheses: missing ')'")
			return 0, false
		case ')':
			return r.arena.NewList(operator, operands, startLoc), true
		case '(':
			id, ok := r.readList()
			if !ok {
				return 0, false
			}
			operands = append(operands, id)
		default:
			operands = append(operands, r.readAtom(tok))
		}
		if r.errs.HasErrors() {
			return 0, false
		}
	}
}

// readAtom converts the current token into an atom NodeID. TokenText
// already retains surrounding quotes for scanner.String tokens, satisfying
// §4.1's "quoted strings preserve their quotes in the token".
func (r *Reader) readAtom(tok rune) ast.NodeID {
	return r.arena.NewAtom(r.s.TokenText(), r.loc())
}

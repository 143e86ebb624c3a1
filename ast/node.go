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

// Package ast holds the expression tree that flows through the linker, the
// macro expander, the checker, and the tree compiler.
//
// The source compiler this package reimplements mutates tree nodes in
// place: a subtree inserted by the linker becomes, by pointer identity, the
// very same object later referenced from a sibling branch, and that shared
// identity is what drives single-emission of shared subtrees. A Go
// reimplementation has no stable node pointers to lean on safely (slices
// backing an arena can move), so this package represents every node as an
// entry in an Arena addressed by a stable NodeID; two NodeIDs are "the same
// node" exactly when they are equal integers. The linker's env binds names
// to NodeIDs, the let:-to-do/dov rewrite replaces the Arena slot's contents
// in place (Arena.Replace), and the macro expander's per-expansion memo
// table is keyed by NodeID. This is the arena/index scheme Design Note 9
// asks for in place of pointer identity.
package ast

import "github.com/mvmjit/tplc/common"

// NodeID identifies a node within an Arena. The zero value is never a valid
// id (Arena.New* functions start numbering at 1), so a NodeID field left
// unset is reliably detectable.
type NodeID int

// Kind distinguishes an atom node from an expression-list node.
type Kind int

const (
	KindAtom Kind = iota
	KindList
)

// Node is either an atom (Kind == KindAtom, Atom holds its text) or an
// expression list (Kind == KindList, Operator names the head and Operands
// are the child NodeIDs, in source order).
type Node struct {
	Kind     Kind
	Atom     string
	Operator string
	Operands []NodeID
	Loc      common.Location
}

// Arena owns every Node created while reading, linking, expanding, and
// compiling one file (including its includes). NodeIDs from one Arena must
// never be used against another.
type Arena struct {
	nodes []Node
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 1)} // index 0 is reserved/invalid
}

// NewAtom allocates a new atom node and returns its id.
func (a *Arena) NewAtom(text string, loc common.Location) NodeID {
	a.nodes = append(a.nodes, Node{Kind: KindAtom, Atom: text, Loc: loc})
	return NodeID(len(a.nodes) - 1)
}

// NewList allocates a new expression-list node and returns its id.
func (a *Arena) NewList(operator string, operands []NodeID, loc common.Location) NodeID {
	a.nodes = append(a.nodes, Node{Kind: KindList, Operator: operator, Operands: operands, Loc: loc})
	return NodeID(len(a.nodes) - 1)
}

// Get returns the node the given id addresses.
func (a *Arena) Get(id NodeID) *Node {
	return &a.nodes[id]
}

// Replace overwrites the contents of the node at id in place, so that every
// other NodeID already pointing at id observes the new contents. This is
// how the linker rewrites a let:'s head to do/dov and how the macro
// expander splices an expansion into the call site, without disturbing any
// NodeID that referred to the original node.
func (a *Arena) Replace(id NodeID, n Node) {
	a.nodes[id] = n
}

// IsAtom reports whether id addresses an atom node.
func (a *Arena) IsAtom(id NodeID) bool {
	return a.Get(id).Kind == KindAtom
}

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

// Package types defines the small tagged-variant type domain that the
// checker assigns to every expression node: Reg, Num, Flag, Void, and the
// polymorphic Any (the spec's "?"). Unlike a general type system with
// subtyping, Any is resolved against a concrete peer by Join; it is not
// modeled as a supertype.
package types

// Type is one member of the five-value type lattice.
type Type int

const (
	// Reg is the register/general-purpose value type. It is also the
	// default result type for any operator not named in the void/flag/num/
	// poly tables.
	Reg Type = iota
	// Num is a numeric-literal-shaped value (operand type num32/num64).
	Num
	// Flag is the result of a comparison or boolean-combinator operator.
	Flag
	// Void is the type of operators with no useful result (store, branch,
	// guard, ...).
	Void
	// Any is the polymorphic type: it unifies with any concrete Reg or Num
	// peer, taking on that peer's type.
	Any
	// Arglist and Carg are pseudo-types for the "arglist"/"carg" operators,
	// which return themselves rather than a lattice member (§4.5). They
	// match only by identity and never participate in Any-unification.
	Arglist
	Carg
)

func (t Type) String() string {
	switch t {
	case Reg:
		return "reg"
	case Num:
		return "num"
	case Flag:
		return "flag"
	case Void:
		return "void"
	case Any:
		return "?"
	case Arglist:
		return "arglist"
	case Carg:
		return "carg"
	default:
		return "invalid"
	}
}

// Equivalent reports whether t1 and t2 are the same type, or one of them is
// Any and the other is a concrete Reg/Num (§4.5 "Type equivalence").
func Equivalent(t1, t2 Type) bool {
	if t1 == t2 {
		return true
	}
	if t1 == Any {
		return t2 == Reg || t2 == Num
	}
	if t2 == Any {
		return t1 == Reg || t1 == Num
	}
	return false
}

// Join resolves a polymorphic (Any) operator's result type against the type
// of one of its operands, per §4.5's "a concrete reg/num dominates ?". The
// second return value is false if the two types cannot be unified at all.
func Join(t1, t2 Type) (Type, bool) {
	if !Equivalent(t1, t2) {
		return 0, false
	}
	if t1 == Any {
		return t2, true
	}
	return t1, true
}

// IsConcrete reports whether t is a fully resolved (non-Any) type.
func (t Type) IsConcrete() bool {
	return t != Any
}

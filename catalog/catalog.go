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

// Package catalog defines the two external contracts the compiler consumes
// at startup (§4.2, §6): the opcode catalog and the expression-operator
// catalog. The physical on-disk description files that back these tables
// are out of scope; this package only fixes their abstract shape and a YAML
// loader for it, since the physical format is an external collaborator's
// concern and YAML is the only config-serialization convention present in
// the retrieval pack (cel-go's common/env.Config).
package catalog

import "github.com/mvmjit/tplc/types"

// Direction is the direction of an opcode operand.
type Direction string

const (
	Read  Direction = "read"
	Write Direction = "write"
)

// OperandDescriptor is one entry of an opcode's operand vector.
type OperandDescriptor struct {
	Direction Direction
	TypeTag   string
}

// OpcodeEntry describes one virtual-machine opcode: its operand vector, in
// order.
type OpcodeEntry struct {
	Name     string
	Operands []OperandDescriptor
}

// OperandType returns the expression Type that operand position n maps to,
// via the type-tag mapping of §4.2, and whether n is in range.
func (o OpcodeEntry) OperandType(n int) (types.Type, bool) {
	if n < 0 || n >= len(o.Operands) {
		return 0, false
	}
	return MapOperandType(o.Operands[n].TypeTag), true
}

// OperandDirection returns the direction of operand position n, and whether
// n is in range.
func (o OpcodeEntry) OperandDirection(n int) (Direction, bool) {
	if n < 0 || n >= len(o.Operands) {
		return "", false
	}
	return o.Operands[n].Direction, true
}

// WriteOperandIndex returns the index of the opcode's first write operand,
// and whether it has any (the operand driving §4.7's "expected output
// type"). Write operands after the first are not reported.
func (o OpcodeEntry) WriteOperandIndex() (int, bool) {
	for i, op := range o.Operands {
		if op.Direction == Write {
			return i, true
		}
	}
	return 0, false
}

// MapOperandType implements §4.2's opcode-operand-type-tag to expression
// Type mapping: num32/num64 map to Num, the polymorphic tag "`1" maps to
// Any, everything else maps to Reg.
func MapOperandType(tag string) types.Type {
	switch tag {
	case "num32", "num64":
		return types.Num
	case "`1":
		return types.Any
	default:
		return types.Reg
	}
}

// OperatorEntry describes one expression-operator's arity, per §4.2.
// Variadic is modeled as an explicit flag rather than the source format's
// negative-operand-count sentinel (§9 "expose variadic as an explicit
// flag"); the YAML loader is what translates the on-disk sentinel into
// this flag.
type OperatorEntry struct {
	OperandCount int
	ParamCount   int
	Variadic     bool
}

// OpcodeCatalog maps opcode name to its OpcodeEntry.
type OpcodeCatalog map[string]OpcodeEntry

// Lookup returns the entry for name, or false if name is not a known opcode.
func (c OpcodeCatalog) Lookup(name string) (OpcodeEntry, bool) {
	e, ok := c[name]
	return e, ok
}

// OperatorCatalog maps operator name to its OperatorEntry.
type OperatorCatalog map[string]OperatorEntry

// Lookup returns the entry for name, or false if name is not a known
// expression operator.
func (c OperatorCatalog) Lookup(name string) (OperatorEntry, bool) {
	e, ok := c[name]
	return e, ok
}

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

package compiler

import (
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// ConstantTable is the insertion-ordered, deduplicated-by-textual-value
// table shared across a whole compilation unit (§3 "Constant table"). A
// value's index is stable once assigned, matching §8's dedup law.
//
// Entries are held as *structpb.Value rather than a bare string, the way
// cel-go's own checked-expression types carry dynamic constant payloads
// (common/types/pb and the checker's type declarations): a JIT constant may
// ultimately be numeric or textual, and structpb.Value is the pack's
// established vocabulary for "a dynamically-typed value" rather than a
// hand-rolled tagged union.
type ConstantTable struct {
	index  map[string]int
	values []*structpb.Value
}

// NewConstantTable returns an empty ConstantTable.
func NewConstantTable() *ConstantTable {
	return &ConstantTable{index: map[string]int{}}
}

// Register returns the index of text within the table, inserting it if
// this is the first time text has been seen. Re-registering the same text
// always returns the same index (§8 "Dedup").
func (t *ConstantTable) Register(text string) int {
	if i, ok := t.index[text]; ok {
		return i
	}
	idx := len(t.values)
	t.values = append(t.values, constantValue(text))
	t.index[text] = idx
	return idx
}

// Values returns the table's entries in insertion order, index-addressable
// exactly as §6's `constants[]` output describes.
func (t *ConstantTable) Values() []*structpb.Value {
	return t.values
}

func constantValue(text string) *structpb.Value {
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return structpb.NewNumberValue(n)
	}
	return structpb.NewStringValue(text)
}

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

import "github.com/mvmjit/tplc/compiler"

// Record is one per-opcode compiled entry of §3's "Per-opcode compiled
// record": the template-offset at which its slots begin within the shared
// Slots/Desc arrays, its length, its root index, and whether its opcode is
// destructive (a bareword suffixed `!` in the source, §4.7).
type Record struct {
	Opcode      string
	Offset      int
	Length      int
	Root        int
	Destructive bool
}

// RecordTable accumulates compiled templates into one shared Slots/Desc
// pair, the way §3 describes the constant table as living "for the entire
// compilation unit": every template: form's output is appended here rather
// than kept as its own independent array.
type RecordTable struct {
	Slots   []string
	Desc    []byte
	Records []Record
	byName  map[string]int
}

// NewRecordTable returns an empty RecordTable.
func NewRecordTable() *RecordTable {
	return &RecordTable{byName: map[string]int{}}
}

// Has reports whether opcode already has a compiled record.
func (t *RecordTable) Has(opcode string) bool {
	_, ok := t.byName[opcode]
	return ok
}

// Append appends tmpl's slots to the table and records opcode's entry,
// offsetting tmpl's own root (which is relative to tmpl.Slots) by the
// table's current length, per §4.7's "merge ... by offsetting their
// template-offsets by the current length".
func (t *RecordTable) Append(opcode string, destructive bool, tmpl compiler.Template) {
	offset := len(t.Slots)
	t.Slots = append(t.Slots, tmpl.Slots...)
	t.Desc = append(t.Desc, tmpl.Desc...)
	t.byName[opcode] = len(t.Records)
	t.Records = append(t.Records, Record{
		Opcode:      opcode,
		Offset:      offset,
		Length:      len(tmpl.Slots),
		Root:        offset + tmpl.Root,
		Destructive: destructive,
	})
}

// Merge appends other's records and slots onto t, offsetting every merged
// record's Offset/Root by t's current slot length (§4.7 include: handling).
// It is the caller's responsibility to have already checked for duplicate
// opcodes (via Has) before calling Merge.
func (t *RecordTable) Merge(other *RecordTable) {
	base := len(t.Slots)
	t.Slots = append(t.Slots, other.Slots...)
	t.Desc = append(t.Desc, other.Desc...)
	for _, r := range other.Records {
		r.Offset += base
		r.Root += base
		t.byName[r.Opcode] = len(t.Records)
		t.Records = append(t.Records, r)
	}
}

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

package ast

import "strings"

// ToDebugString renders the subtree rooted at id back into S-expression
// syntax. It is used by tests; the compiler and its diagnostics do not
// call it.
func (a *Arena) ToDebugString(id NodeID) string {
	var b strings.Builder
	a.writeDebugString(&b, id)
	return b.String()
}

func (a *Arena) writeDebugString(b *strings.Builder, id NodeID) {
	n := a.Get(id)
	if n.Kind == KindAtom {
		b.WriteString(n.Atom)
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Operator)
	for _, operand := range n.Operands {
		b.WriteByte(' ')
		a.writeDebugString(b, operand)
	}
	b.WriteByte(')')
}

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

package checker

import (
	"github.com/mvmjit/tplc/common"
	"github.com/mvmjit/tplc/types"
)

// typeErrors collects the checker's diagnostics under common.Errors, one
// named helper per distinct failure shape, the way cel-go's own
// checker.TypeErrors wraps its common.Errors.
type typeErrors struct {
	*common.Errors
}

func (e *typeErrors) unknownOperator(l common.Location, name string) {
	e.ReportError(common.UnknownOperator, l, "unknown operator %q", name)
}

// arityMismatch reuses TypeMismatch: the diagnostic kind catalog has no
// dedicated kind for "wrong operand count", and a wrong count is ultimately
// a shape mismatch against the operator's declared signature.
func (e *typeErrors) arityMismatch(l common.Location, name string, want, got int) {
	e.ReportError(common.TypeMismatch, l, "operator %q expects %d operand(s), got %d", name, want, got)
}

func (e *typeErrors) operandTypeMismatch(l common.Location, name string, position int, want, got types.Type) {
	e.ReportError(common.TypeMismatch, l, "operator %q: operand %d has type %s, want %s", name, position, got, want)
}

func (e *typeErrors) resultTypeMismatch(l common.Location, name string, got, other types.Type) {
	e.ReportError(common.TypeMismatch, l, "operator %q: branches have incompatible types %s and %s", name, got, other)
}

func (e *typeErrors) flagOperandRequired(l common.Location, name string, got types.Type) {
	e.ReportError(common.TypeMismatch, l, "operator %q: first operand must be flag, got %s", name, got)
}

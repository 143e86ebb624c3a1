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

package common

import (
	"fmt"
	"strings"
)

// Kind identifies the diagnostic kinds named in the error handling design:
// ReadError, UnknownKeyword, UnknownOpcode and so on. A Kind carries no
// behavior of its own; it lets callers and tests distinguish error causes
// without string-matching the message.
type Kind string

const (
	ReadError            Kind = "ReadError"
	UnknownKeyword       Kind = "UnknownKeyword"
	UnknownOpcode        Kind = "UnknownOpcode"
	RedefinedOpcode      Kind = "RedefinedOpcode"
	RedefinedMacro       Kind = "RedefinedMacro"
	UnknownOperator      Kind = "UnknownOperator"
	UnknownMacro         Kind = "UnknownMacro"
	MacroArity           Kind = "MacroArity"
	UnboundName          Kind = "UnboundName"
	UnmatchedMacroParam  Kind = "UnmatchedMacroParam"
	OperandRefOutOfRange Kind = "OperandRefOutOfRange"
	WriteRefMissing      Kind = "WriteRefMissing"
	WriteRefForbidden    Kind = "WriteRefForbidden"
	SizeParamBad         Kind = "SizeParamBad"
	TypeMismatch         Kind = "TypeMismatch"
	DestructiveNoWrite   Kind = "DestructiveWithoutWrite"
	IncludeMissing       Kind = "IncludeMissing"
)

// Error represents a single diagnostic.
type Error struct {
	Kind     Kind
	Location Location
	Message  string
}

// ToDisplayString returns the error in a user-friendly format. When the
// Location is tied to a Source (i.e. it came from the reader rather than
// a synthetic NewLocation), the source's name replaces a bare line:column
// pair and a text Snippet is appended, underlining the offending column.
func (e *Error) ToDisplayString() string {
	if e.Location == nil || e.Location == NoLocation {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	src := e.Location.Source()
	if src == nil {
		return fmt.Sprintf("%s: %d:%d: %s", e.Kind, e.Location.Line(), e.Location.Column(), e.Message)
	}
	result := fmt.Sprintf("%s: %s:%d:%d: %s", e.Kind, src.Name(), e.Location.Line(), e.Location.Column(), e.Message)
	if snippet, found := src.Snippet(e.Location.Line()); found {
		result += "\n | " + snippet
		result += "\n | " + strings.Repeat(".", e.Location.Column()-1) + "^"
	}
	return result
}

// Error implements the error interface so that the first reported diagnostic
// can also be returned directly from a Compile call.
func (e *Error) Error() string {
	return e.ToDisplayString()
}

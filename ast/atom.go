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

import "strconv"

// An atom is interpreted contextually as one of the following (§3). These
// helpers classify an atom's raw text; none of them consult an environment,
// so they are pure functions over the token spelling alone.

// IsNumber reports whether text is a decimal integer literal.
func IsNumber(text string) bool {
	_, err := strconv.ParseInt(text, 10, 64)
	return err == nil
}

// IsWriteRef reports whether text is a write-reference operand reference
// (\$N) and, if so, returns N.
func IsWriteRef(text string) (n int, ok bool) {
	if len(text) < 2 || text[0] != '\\' || text[1] != '$' {
		return 0, false
	}
	return parseOperandIndex(text[2:])
}

// IsOperandRef reports whether text is a plain operand reference ($N) and,
// if so, returns N. Write references (\$N) are not operand refs.
func IsOperandRef(text string) (n int, ok bool) {
	if len(text) < 2 || text[0] != '$' {
		return 0, false
	}
	return parseOperandIndex(text[1:])
}

func parseOperandIndex(digits string) (int, bool) {
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// IsNamedRef reports whether text is a named reference ($name, name
// non-numeric) and, if so, returns name.
func IsNamedRef(text string) (name string, ok bool) {
	if len(text) < 2 || text[0] != '$' {
		return "", false
	}
	rest := text[1:]
	if IsNumber(rest) {
		return "", false
	}
	return rest, true
}

// IsMacroParam reports whether text is a macro placeholder (,name) and, if
// so, returns name.
func IsMacroParam(text string) (name string, ok bool) {
	if len(text) < 2 || text[0] != ',' {
		return "", false
	}
	return text[1:], true
}

// IsMacroName reports whether text names a macro in operator position
// (^name) and, if so, returns name.
func IsMacroName(text string) (name string, ok bool) {
	if len(text) < 2 || text[0] != '^' {
		return "", false
	}
	return text[1:], true
}

// IsMacroCallParam reports whether text invokes a macro from a parameter
// position (&name) and, if so, returns name.
func IsMacroCallParam(text string) (name string, ok bool) {
	if len(text) < 2 || text[0] != '&' {
		return "", false
	}
	return text[1:], true
}

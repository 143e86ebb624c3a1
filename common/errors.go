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

import "fmt"

// Errors is the diagnostic collector threaded through every compiler stage.
//
// Per the error handling design, there is no local recovery: once the first
// diagnostic is reported, the compilation is considered aborted. Errors
// keeps only that first diagnostic: ReportError after the first is a cheap
// no-op rather than a growing log, matching "the driver reports the first
// error and terminates".
type Errors struct {
	errors []Error
}

// NewErrors returns a new, empty Errors collector.
func NewErrors() *Errors {
	return &Errors{}
}

// ReportError records a diagnostic of the given Kind at the given Location.
func (e *Errors) ReportError(kind Kind, l Location, format string, args ...interface{}) {
	if e.HasErrors() {
		return
	}
	e.errors = append(e.errors, Error{
		Kind:     kind,
		Location: l,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any diagnostic has been recorded.
func (e *Errors) HasErrors() bool {
	return len(e.errors) > 0
}

// First returns the first recorded diagnostic, or nil if none was recorded.
func (e *Errors) First() *Error {
	if !e.HasErrors() {
		return nil
	}
	return &e.errors[0]
}

// GetErrors returns all the diagnostics accumulated so far (at most one,
// by construction of ReportError).
func (e *Errors) GetErrors() []Error {
	return e.errors[:]
}

func (e *Errors) String() string {
	if err := e.First(); err != nil {
		return err.ToDisplayString()
	}
	return ""
}

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

import "testing"

func TestErrorsReportsFirstOnly(t *testing.T) {
	errs := NewErrors()
	errs.ReportError(UnknownOpcode, NewLocation(1, 1), "opcode %q not found", "foo")
	errs.ReportError(UnknownOperator, NewLocation(2, 1), "operator %q not found", "bar")

	if len(errs.GetErrors()) != 1 {
		t.Fatalf("got %d errors, want 1 (no local recovery)", len(errs.GetErrors()))
	}
	if errs.First().Kind != UnknownOpcode {
		t.Fatalf("got kind %v, want %v", errs.First().Kind, UnknownOpcode)
	}
}

func TestErrorsToDisplayString(t *testing.T) {
	errs := NewErrors()
	errs.ReportError(TypeMismatch, NewLocation(3, 5), "expected %s but found %s", "reg", "num")

	want := "TypeMismatch: 3:5: expected reg but found num"
	if got := errs.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNoLocationDisplayString(t *testing.T) {
	errs := NewErrors()
	errs.ReportError(IncludeMissing, NoLocation, "could not open %q", "foo.tpl")

	want := "IncludeMissing: could not open \"foo.tpl\""
	if got := errs.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

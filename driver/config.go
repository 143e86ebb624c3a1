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

// Package driver implements the file driver of §4.7: it processes a
// stream of top-level forms (macro:, template:, include:) read from one
// file, threading a single macro registry, constant table, and per-opcode
// record table through the whole run, the way cel-go's codelab ties its
// parser, checker and interpreter into one pass over a CLI-supplied
// expression.
package driver

// Config is the driver's external configuration (§6), accepted from the
// surrounding CLI wrapper and YAML-serializable the way cel-go's
// common/env.Config is.
type Config struct {
	// Prefix is prepended to every emitted operator name and bareword
	// (§4.6). Defaults to "MVM_JIT_".
	Prefix string `yaml:"prefix"`
	// Input is the source file path, or "-" for stdin.
	Input string `yaml:"input"`
	// Output is the destination path, or "-" for stdout.
	Output string `yaml:"output"`
	// Include enables processing of include: forms; when false, an
	// include: form is treated as an unknown top-level keyword.
	Include bool `yaml:"include"`
	// Test runs the self-tests of §8 and exits, bypassing Input/Output.
	Test bool `yaml:"test"`
}

// DefaultPrefix is the textual prefix applied when Config.Prefix is empty.
const DefaultPrefix = "MVM_JIT_"

// prefix returns c's configured prefix, or DefaultPrefix if unset.
func (c Config) prefix() string {
	if c.Prefix == "" {
		return DefaultPrefix
	}
	return c.Prefix
}

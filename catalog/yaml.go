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

package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlOpcodeFile is the on-disk shape of the opcode catalog, following the
// same "serializable Config struct with yaml tags" convention cel-go's
// common/env.Config uses for its environment configuration.
type yamlOpcodeFile struct {
	Opcodes []yamlOpcode `yaml:"opcodes"`
}

type yamlOpcode struct {
	Name     string          `yaml:"name"`
	Operands []yamlOperand   `yaml:"operands"`
}

type yamlOperand struct {
	Direction string `yaml:"direction"`
	Type      string `yaml:"type"`
}

// yamlOperatorFile is the on-disk shape of the expression-operator catalog.
type yamlOperatorFile struct {
	Operators []yamlOperator `yaml:"operators"`
}

type yamlOperator struct {
	Name         string `yaml:"name"`
	OperandCount int    `yaml:"operand_count"`
	ParamCount   int    `yaml:"param_count"`
}

// LoadOpcodeCatalog reads an opcode catalog from its YAML abstract form.
func LoadOpcodeCatalog(r io.Reader) (OpcodeCatalog, error) {
	var file yamlOpcodeFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("catalog: decode opcode catalog: %w", err)
	}
	out := make(OpcodeCatalog, len(file.Opcodes))
	for _, op := range file.Opcodes {
		operands := make([]OperandDescriptor, len(op.Operands))
		for i, o := range op.Operands {
			operands[i] = OperandDescriptor{Direction: Direction(o.Direction), TypeTag: o.Type}
		}
		out[op.Name] = OpcodeEntry{Name: op.Name, Operands: operands}
	}
	return out, nil
}

// LoadOperatorCatalog reads an expression-operator catalog from its YAML
// abstract form. A negative operand_count in the source file is the
// convention that signals a variadic operator (§6); this loader is the one
// place that sentinel is interpreted, translating it into the explicit
// Variadic flag that the rest of the compiler consumes.
func LoadOperatorCatalog(r io.Reader) (OperatorCatalog, error) {
	var file yamlOperatorFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("catalog: decode operator catalog: %w", err)
	}
	out := make(OperatorCatalog, len(file.Operators))
	for _, op := range file.Operators {
		variadic := op.OperandCount < 0
		count := op.OperandCount
		if variadic {
			count = 0
		}
		out[op.Name] = OperatorEntry{OperandCount: count, ParamCount: op.ParamCount, Variadic: variadic}
	}
	return out, nil
}

package compiler

import (
	"testing"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/catalog"
	"github.com/mvmjit/tplc/common"
)

func loadOpcode(name string, operands ...catalog.OperandDescriptor) catalog.OpcodeEntry {
	return catalog.OpcodeEntry{Name: name, Operands: operands}
}

func assertNoErrors(t *testing.T, errs *common.Errors) {
	t.Helper()
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
}

func TestCompileChildrenBeforeParents(t *testing.T) {
	a := ast.NewArena()
	// (add (copy $0) $1) — the nested copy must emit, and its link must
	// resolve, before the enclosing add's own l slot is appended.
	n0 := a.NewAtom("$0", common.NoLocation)
	n1 := a.NewAtom("$1", common.NoLocation)
	cp := a.NewList("copy", []ast.NodeID{n0}, common.NoLocation)
	add := a.NewList("add", []ast.NodeID{cp, n1}, common.NoLocation)

	opnds := loadOpcode("add", catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"}, catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"})
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	tmpl := c.Compile(add)
	assertNoErrors(t, errs)

	if tmpl.Desc[tmpl.Root] != DescOperator {
		t.Fatalf("expected root to address an n slot, got %q", tmpl.Desc[tmpl.Root])
	}
	if tmpl.Desc[tmpl.Root+1] != DescCount || tmpl.Slots[tmpl.Root+1] != "2" {
		t.Fatalf("expected the n slot to be immediately followed by s=2, got %q/%q",
			string(tmpl.Desc[tmpl.Root+1]), tmpl.Slots[tmpl.Root+1])
	}
	for i, d := range tmpl.Desc {
		if d == DescLink {
			link := atoi(t, tmpl.Slots[i])
			if link >= i {
				t.Errorf("link slot at %d points to %d, want < %d", i, link, i)
			}
		}
	}
}

func TestCompileSharedSubtreeEmitsOnce(t *testing.T) {
	a := ast.NewArena()
	// (add (copy $0) (copy $0)) built from ONE shared copy node.
	ref := a.NewAtom("$0", common.NoLocation)
	shared := a.NewList("copy", []ast.NodeID{ref}, common.NoLocation)
	top := a.NewList("add", []ast.NodeID{shared, shared}, common.NoLocation)

	opnds := loadOpcode("op", catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"})
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	tmpl := c.Compile(top)
	assertNoErrors(t, errs)

	// Both of add's l slots must reference the same emitted index.
	var links []int
	for i, d := range tmpl.Desc {
		if d == DescLink {
			links = append(links, atoi(t, tmpl.Slots[i]))
		}
	}
	if len(links) != 2 || links[0] != links[1] {
		t.Errorf("expected both links to the shared copy node to match, got %v", links)
	}
}

func TestCompileOperandRefEmitsIndexSlot(t *testing.T) {
	a := ast.NewArena()
	ref := a.NewAtom("$1", common.NoLocation)
	cp := a.NewList("copy", []ast.NodeID{ref}, common.NoLocation)

	opnds := loadOpcode("op",
		catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"},
		catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"},
	)
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	tmpl := c.Compile(cp)
	assertNoErrors(t, errs)

	if tmpl.Desc[2] != DescIndex || tmpl.Slots[2] != "1" {
		t.Errorf("expected an i slot holding 1, got %q/%q", string(tmpl.Desc[2]), tmpl.Slots[2])
	}
}

func TestCompileWriteRefRequiresWriteDirection(t *testing.T) {
	a := ast.NewArena()
	ref := a.NewAtom(`\$0`, common.NoLocation)
	store := a.NewList("store", []ast.NodeID{ref, a.NewAtom("1", common.NoLocation)}, common.NoLocation)

	// operand 0 is read, not write: a \$ sigil on it is forbidden.
	opnds := loadOpcode("store", catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"})
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	c.Compile(store)
	if !errs.HasErrors() || errs.First().Kind != common.WriteRefForbidden {
		t.Fatalf("expected WriteRefForbidden, got %v", errs.First())
	}
}

func TestCompileMissingWriteSigilIsError(t *testing.T) {
	a := ast.NewArena()
	ref := a.NewAtom("$0", common.NoLocation)
	store := a.NewList("store", []ast.NodeID{ref, a.NewAtom("1", common.NoLocation)}, common.NoLocation)

	opnds := loadOpcode("store", catalog.OperandDescriptor{Direction: catalog.Write, TypeTag: "num64"})
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	c.Compile(store)
	if !errs.HasErrors() || errs.First().Kind != common.WriteRefMissing {
		t.Fatalf("expected WriteRefMissing, got %v", errs.First())
	}
}

func TestCompileOperandRefOutOfRange(t *testing.T) {
	a := ast.NewArena()
	ref := a.NewAtom("$5", common.NoLocation)
	cp := a.NewList("copy", []ast.NodeID{ref}, common.NoLocation)

	opnds := loadOpcode("op", catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"})
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	c.Compile(cp)
	if !errs.HasErrors() || errs.First().Kind != common.OperandRefOutOfRange {
		t.Fatalf("expected OperandRefOutOfRange, got %v", errs.First())
	}
}

func TestCompileDoubledOperandExceptionBypassesDirection(t *testing.T) {
	a := ast.NewArena()
	// inc_i's opcode vector declares only one (read) operand, but $0/$1
	// must still be accepted unconditionally (§4.6's ad hoc exception).
	n0 := a.NewAtom("$0", common.NoLocation)
	n1 := a.NewAtom("$1", common.NoLocation)
	incr := a.NewList("inc_i", []ast.NodeID{n0, n1}, common.NoLocation)

	opnds := loadOpcode("inc_i", catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"})
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, NewConstantTable(), "MVM_JIT_", errs)
	c.Compile(incr)
	assertNoErrors(t, errs)
}

func TestCompileSizeParamAcceptsSzBarewordAndRejectsPlainBareword(t *testing.T) {
	a := ast.NewArena()
	addr := a.NewAtom("$0", common.NoLocation)
	goodSize := a.NewAtom("word_sz", common.NoLocation)
	load := a.NewList("load", []ast.NodeID{addr, goodSize}, common.NoLocation)

	opnds := loadOpcode("load", catalog.OperandDescriptor{Direction: catalog.Read, TypeTag: "reg"})
	ops := catalog.OperatorCatalog{"load": {OperandCount: 1, ParamCount: 1}}
	errs := common.NewErrors()
	c := New(a, opnds, ops, NewConstantTable(), "MVM_JIT_", errs)
	tmpl := c.Compile(load)
	assertNoErrors(t, errs)
	if tmpl.Slots[len(tmpl.Slots)-1] != "MVM_JIT_WORD_SZ" {
		t.Errorf("expected the size param to be textually prefixed, got %q", tmpl.Slots[len(tmpl.Slots)-1])
	}

	a2 := ast.NewArena()
	addr2 := a2.NewAtom("$0", common.NoLocation)
	badSize := a2.NewAtom("garbage", common.NoLocation)
	load2 := a2.NewList("load", []ast.NodeID{addr2, badSize}, common.NoLocation)
	errs2 := common.NewErrors()
	c2 := New(a2, opnds, ops, NewConstantTable(), "MVM_JIT_", errs2)
	c2.Compile(load2)
	if !errs2.HasErrors() || errs2.First().Kind != common.SizeParamBad {
		t.Fatalf("expected SizeParamBad, got %v", errs2.First())
	}
}

func TestCompileLargeConstDivertsToConstantTable(t *testing.T) {
	a := ast.NewArena()
	value := a.NewAtom("1099511627776", common.NoLocation)
	cst := a.NewList("const_large", []ast.NodeID{value}, common.NoLocation)

	opnds := loadOpcode("op")
	consts := NewConstantTable()
	errs := common.NewErrors()
	c := New(a, opnds, catalog.OperatorCatalog{}, consts, "MVM_JIT_", errs)
	tmpl := c.Compile(cst)
	assertNoErrors(t, errs)

	if tmpl.Desc[tmpl.Root+2] != DescConst {
		t.Fatalf("expected a c slot for the diverted value, got %q", string(tmpl.Desc[tmpl.Root+2]))
	}
	if len(consts.Values()) != 1 {
		t.Fatalf("expected exactly one registered constant, got %d", len(consts.Values()))
	}

	// Registering the same textual value again must return the same index.
	if idx := consts.Register("1099511627776"); idx != 0 {
		t.Errorf("expected dedup to return index 0, got %d", idx)
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			t.Fatalf("expected a decimal slot value, got %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n
}

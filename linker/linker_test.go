package linker

import (
	"testing"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/common"
	"github.com/mvmjit/tplc/types"
)

type fakeOpcode map[int]types.Type

func (f fakeOpcode) OperandType(n int) (types.Type, bool) {
	t, ok := f[n]
	return t, ok
}

// build constructs (let: (($x (copy $0))) (add $x $x)) and returns its id.
func build(a *ast.Arena) ast.NodeID {
	opnd := a.NewAtom("$0", common.NoLocation)
	def := a.NewList("copy", []ast.NodeID{opnd}, common.NoLocation)
	decl := a.NewList("$x", []ast.NodeID{def}, common.NoLocation)
	declList := a.NewList("", []ast.NodeID{decl}, common.NoLocation)
	xRefA := a.NewAtom("$x", common.NoLocation)
	xRefB := a.NewAtom("$x", common.NoLocation)
	body := a.NewList("add", []ast.NodeID{xRefA, xRefB}, common.NoLocation)
	return a.NewList("let:", []ast.NodeID{declList, body}, common.NoLocation)
}

func TestLinkRewritesLetToDo(t *testing.T) {
	a := ast.NewArena()
	id := build(a)
	errs := common.NewErrors()
	env := fakeOpcode{0: types.Reg}
	New(a, env, errs).Link(id)
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	n := a.Get(id)
	if n.Operator != "do" {
		t.Fatalf("expected head to become do, got %q", n.Operator)
	}
	// one discard (for x) followed by the body.
	if len(n.Operands) != 2 {
		t.Fatalf("got %d operands, want 2 (discard + body)", len(n.Operands))
	}
	discard := a.Get(n.Operands[0])
	if discard.Operator != "discard" {
		t.Errorf("expected first operand to be a discard, got %q", discard.Operator)
	}
}

func TestLinkResolvesSharedNameToSharedSubtree(t *testing.T) {
	a := ast.NewArena()
	id := build(a)
	errs := common.NewErrors()
	env := fakeOpcode{0: types.Reg}
	New(a, env, errs).Link(id)
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	n := a.Get(id)
	body := a.Get(n.Operands[1])
	if body.Operands[0] != body.Operands[1] {
		t.Errorf("expected both $x references to resolve to the same NodeID, got %v and %v",
			body.Operands[0], body.Operands[1])
	}
}

func TestLinkUnboundNameIsError(t *testing.T) {
	a := ast.NewArena()
	ref := a.NewAtom("$nope", common.NoLocation)
	errs := common.NewErrors()
	New(a, fakeOpcode{}, errs).Link(ref)
	if !errs.HasErrors() || errs.First().Kind != common.UnboundName {
		t.Fatalf("expected UnboundName error, got %v", errs.First())
	}
}

func TestLinkNumericOperandRefUntouched(t *testing.T) {
	a := ast.NewArena()
	ref := a.NewAtom("$0", common.NoLocation)
	errs := common.NewErrors()
	New(a, fakeOpcode{0: types.Reg}, errs).Link(ref)
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	if a.Get(ref).Atom != "$0" {
		t.Errorf("expected $0 atom to be left alone, got %q", a.Get(ref).Atom)
	}
}

package reader

import (
	"strings"
	"testing"

	"github.com/mvmjit/tplc/ast"
	"github.com/mvmjit/tplc/common"
)

func TestReadAllSimple(t *testing.T) {
	arena := ast.NewArena()
	errs := common.NewErrors()
	r := New(arena, errs, "test", strings.NewReader(`(template: load (copy $0))`))
	forms := r.ReadAll()
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	if got, want := arena.ToDebugString(forms[0]), "(template: load (copy $0))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadAllSkipsComments(t *testing.T) {
	arena := ast.NewArena()
	errs := common.NewErrors()
	src := "# a leading comment\n(add $0 $1) # trailing\n(sub $0 $1)"
	r := New(arena, errs, "test", strings.NewReader(src))
	forms := r.ReadAll()
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(forms))
	}
}

func TestReadAllUnbalancedParens(t *testing.T) {
	arena := ast.NewArena()
	errs := common.NewErrors()
	r := New(arena, errs, "test", strings.NewReader(`(add $0 $1`))
	r.ReadAll()
	if !errs.HasErrors() {
		t.Fatal("expected an unbalanced-parentheses error")
	}
	if errs.First().Kind != common.ReadError {
		t.Errorf("got kind %v, want ReadError", errs.First().Kind)
	}
}

func TestReadAllHeadlessDeclarationList(t *testing.T) {
	arena := ast.NewArena()
	errs := common.NewErrors()
	r := New(arena, errs, "test", strings.NewReader(`(let: (($x (const 1))) (add $x $x))`))
	forms := r.ReadAll()
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	letNode := arena.Get(forms[0])
	declList := arena.Get(letNode.Operands[0])
	if declList.Operator != "" || len(declList.Operands) != 1 {
		t.Fatalf("expected a headless single-entry declaration list, got operator %q with %d operands",
			declList.Operator, len(declList.Operands))
	}
	decl := arena.Get(declList.Operands[0])
	if decl.Operator != "$x" || len(decl.Operands) != 1 {
		t.Fatalf("expected decl ($x (const 1)), got operator %q with %d operands", decl.Operator, len(decl.Operands))
	}
}

func TestReadAllQuotedString(t *testing.T) {
	arena := ast.NewArena()
	errs := common.NewErrors()
	r := New(arena, errs, "test", strings.NewReader(`(include: "foo.tpl")`))
	forms := r.ReadAll()
	if errs.HasErrors() {
		t.Fatalf("unexpected error: %v", errs.First())
	}
	if got, want := arena.ToDebugString(forms[0]), `(include: "foo.tpl")`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

package symbol

import "testing"

func TestInternIsStructural(t *testing.T) {
	a := Intern("f", 2)
	b := Intern("f", 2)
	if a != b {
		t.Fatalf("Intern(f,2) not idempotent: %d != %d", a, b)
	}
	c := Intern("f", 1)
	if a == c {
		t.Fatal("symbols of the same name but different arity must differ")
	}
	if Name(a) != "f" || Arity(a) != 2 {
		t.Fatalf("Name/Arity round-trip failed: %q/%d", Name(a), Arity(a))
	}
}

func TestFreshDisjointFromUserNames(t *testing.T) {
	f1 := Fresh(0)
	f2 := Fresh(0)
	if f1 == f2 {
		t.Fatal("Fresh must not repeat")
	}
	if Name(f1) == Name(f2) {
		t.Fatal("Fresh names must be distinct")
	}
}

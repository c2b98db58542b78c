package status

import "testing"

func TestAdditiveUnsatDominates(t *testing.T) {
	if Additive(Sat, Unsat) != Unsat {
		t.Fatal("Unsat must dominate Additive")
	}
	if Additive(Unknown, Unknown) != Unknown {
		t.Fatal("two Unknowns stay Unknown")
	}
	if Additive(Unsat, Unknown) != Unsat {
		t.Fatal("Unsat beats Unknown in Additive")
	}
}

func TestMultiplicativeSatDominates(t *testing.T) {
	if Multiplicative(Unsat, Sat) != Sat {
		t.Fatal("Sat must dominate Multiplicative")
	}
	if Multiplicative(Sat, Unknown) != Sat {
		t.Fatal("Sat beats Unknown in Multiplicative")
	}
}

func TestFoldIdentities(t *testing.T) {
	if AdditiveFold(nil) != AdditiveIdentity {
		t.Fatal("empty additive fold must be the identity")
	}
	if MultiplicativeFold(nil) != MultiplicativeIdentity {
		t.Fatal("empty multiplicative fold must be the identity")
	}
}

func TestCompatible(t *testing.T) {
	if !Compatible(Unknown, Sat) {
		t.Fatal("Unknown can become anything")
	}
	if !Compatible(Sat, Sat) {
		t.Fatal("reaffirming the same status is compatible")
	}
	if Compatible(Sat, Unsat) {
		t.Fatal("changing a known status must be incompatible")
	}
}

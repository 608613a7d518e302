package pattern

import (
	"errors"
	"testing"
)

func TestRelationBinding(t *testing.T) {
	r := NewRelation([]string{"S", "I", "R"})
	infection := r.AddBox(2)
	recovery := r.AddBox(2)

	for _, bind := range []struct {
		box, arg int
		junction string
	}{
		{infection, 0, "S"},
		{infection, 1, "I"},
		{recovery, 0, "I"},
		{recovery, 1, "R"},
	} {
		if err := r.BindArgument(bind.box, bind.arg, bind.junction); err != nil {
			t.Fatalf("bind %v failed: %v", bind, err)
		}
	}

	if got := len(r.Junctions()); got != 3 {
		t.Errorf("junction count: got %d, want 3", got)
	}

	args := r.BoxArguments(recovery)
	if args[0] != 1 || args[1] != 2 {
		t.Errorf("recovery args: got %v, want [1 2]", args)
	}
}

func TestRelationImplicitJunction(t *testing.T) {
	r := NewRelation(nil)
	b := r.AddBox(1)

	if err := r.BindArgument(b, 0, "hidden"); err != nil {
		t.Fatalf("bind failed: %v", err)
	}

	idx, err := r.JunctionIndex("hidden")
	if err != nil {
		t.Fatalf("junction not created: %v", err)
	}
	if idx != 0 {
		t.Errorf("got index %d, want 0", idx)
	}
	if len(r.OuterVariables()) != 0 {
		t.Error("implicit junction must not be an outer variable")
	}
}

func TestRelationErrors(t *testing.T) {
	r := NewRelation([]string{"S"})
	b := r.AddBox(2)

	if err := r.BindArgument(5, 0, "S"); !errors.Is(err, ErrUnknownBox) {
		t.Errorf("unknown box: got %v", err)
	}
	if err := r.BindArgument(b, 2, "S"); !errors.Is(err, ErrArgumentRange) {
		t.Errorf("argument range: got %v", err)
	}
	if err := r.BindArgument(b, -1, "S"); !errors.Is(err, ErrArgumentRange) {
		t.Errorf("negative argument: got %v", err)
	}
	if _, err := r.JunctionIndex("Z"); !errors.Is(err, ErrUnknownJunction) {
		t.Errorf("unknown junction: got %v", err)
	}
}

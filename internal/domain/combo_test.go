package domain

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestSuppressRest_PairInMiddle verifies the lead derivation on a 3-entry
// plan where the second entry is paired behind the first: only the first
// (pointed-to) entry has its rest suppressed.
func TestSuppressRest_PairInMiddle(t *testing.T) {
	first := PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 90}
	second := PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 60, ComboWith: &first.ID}
	third := PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 120}

	suppress := SuppressRest([]PlanEntry{first, second, third})

	if !suppress[first.ID] {
		t.Error("lead entry should have rest suppressed")
	}
	if suppress[second.ID] {
		t.Error("trailing entry carries the pair's rest and must not be suppressed")
	}
	if suppress[third.ID] {
		t.Error("unpaired entry must not be suppressed")
	}
}

// TestSuppressRest_NoPairs verifies that a plan without combo references
// suppresses nothing.
func TestSuppressRest_NoPairs(t *testing.T) {
	entries := []PlanEntry{
		{ID: primitive.NewObjectID()},
		{ID: primitive.NewObjectID()},
	}
	suppress := SuppressRest(entries)
	for id, s := range suppress {
		if s {
			t.Errorf("entry %s suppressed without any combo reference", id.Hex())
		}
	}
}

// TestSuppressRest_OutOfBandChain verifies that suppression is computed
// purely from "referenced by someone": an entry that both points at a
// sibling and is pointed to (data imported out of band, rejected at add
// time) is still reported as a lead.
func TestSuppressRest_OutOfBandChain(t *testing.T) {
	a := PlanEntry{ID: primitive.NewObjectID()}
	b := PlanEntry{ID: primitive.NewObjectID(), ComboWith: &a.ID}
	c := PlanEntry{ID: primitive.NewObjectID(), ComboWith: &b.ID}

	suppress := SuppressRest([]PlanEntry{a, b, c})

	if !suppress[a.ID] {
		t.Error("a is referenced by b and should be suppressed")
	}
	if !suppress[b.ID] {
		t.Error("b is referenced by c and should be suppressed, regardless of b's own reference")
	}
	if suppress[c.ID] {
		t.Error("c is referenced by nobody and must not be suppressed")
	}
}

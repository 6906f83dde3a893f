package audit

import (
	"reflect"
	"testing"

	"github.com/greyfable/masterlist/internal/models"
)

func snapshot() *models.Character {
	return &models.Character{
		MasterlistNumber: "ML-042",
		Owner:            "Alice",
		Artist:           "Bert",
		PrimaryBiome:     "tundra",
		Rarity:           "rare",
		Status:           "active",
	}
}

func TestDiffCharactersIdentical(t *testing.T) {
	a := snapshot()
	if diffs := DiffCharacters(a, a); len(diffs) != 0 {
		t.Errorf("DiffCharacters(a, a) = %v, want empty", diffs)
	}

	b := snapshot()
	if diffs := DiffCharacters(a, b); len(diffs) != 0 {
		t.Errorf("DiffCharacters(a, copy) = %v, want empty", diffs)
	}
}

func TestDiffCharactersSingleChange(t *testing.T) {
	prior := snapshot()
	next := snapshot()
	next.Owner = "Bob"

	diffs := DiffCharacters(prior, next)
	want := []models.FieldDiff{
		{Field: "owner", Display: "Owner", From: "Alice", To: "Bob"},
	}
	if !reflect.DeepEqual(diffs, want) {
		t.Errorf("DiffCharacters() = %v, want %v", diffs, want)
	}
}

func TestDiffCharactersEmptySentinel(t *testing.T) {
	prior := snapshot()
	next := snapshot()
	next.Notes = "now has notes"
	prior.Traits = "stripes"
	next.Traits = ""

	diffs := DiffCharacters(prior, next)
	want := []models.FieldDiff{
		{Field: "traits", Display: "Traits", From: "stripes", To: EmptyValue},
		{Field: "notes", Display: "Notes", From: EmptyValue, To: "now has notes"},
	}
	if !reflect.DeepEqual(diffs, want) {
		t.Errorf("DiffCharacters() = %v, want %v", diffs, want)
	}
}

func TestDiffCharactersEmptyToEmpty(t *testing.T) {
	prior := snapshot()
	next := snapshot()
	// Notes empty on both sides: must not produce an entry
	prior.Notes = ""
	next.Notes = ""

	if diffs := DiffCharacters(prior, next); len(diffs) != 0 {
		t.Errorf("DiffCharacters() = %v, want empty", diffs)
	}
}

func TestDiffCharactersAllowListOrder(t *testing.T) {
	prior := snapshot()
	next := snapshot()
	// Change fields in reverse allow-list order; output must still follow
	// the fixed order.
	next.MasterlistNumber = "ML-043"
	next.Notes = "renumbered"
	next.Rarity = "legendary"
	next.Owner = "Bob"

	diffs := DiffCharacters(prior, next)
	gotOrder := []string{}
	for _, d := range diffs {
		gotOrder = append(gotOrder, d.Field)
	}
	wantOrder := []string{"owner", "rarity", "notes", "masterlist_number"}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("diff order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestDiffCharactersIgnoresUntrackedFields(t *testing.T) {
	prior := snapshot()
	next := snapshot()
	// Image URL and soft-delete state are not on the allow-list
	next.ImageURL = "https://img.example.com/a.png"
	next.Deleted = true

	if diffs := DiffCharacters(prior, next); len(diffs) != 0 {
		t.Errorf("DiffCharacters() = %v, want empty for untracked fields", diffs)
	}
}

func TestDiffCharactersDeterministic(t *testing.T) {
	prior := snapshot()
	next := snapshot()
	next.Owner = "Bob"
	next.Status = "archived"

	first := DiffCharacters(prior, next)
	for i := 0; i < 10; i++ {
		if got := DiffCharacters(prior, next); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: DiffCharacters() = %v, want %v", i, got, first)
		}
	}
}

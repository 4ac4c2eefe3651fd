package extract

import (
	"reflect"
	"testing"
)

func TestMergeScalarListsUnion(t *testing.T) {
	existing := NewResult()
	existing.Themes = []string{"fate", "loyalty"}
	incoming := NewResult()
	incoming.Themes = []string{"fate", "war"}

	got := Merge(existing, incoming)
	want := []string{"fate", "loyalty", "war"}
	if !reflect.DeepEqual(got.Themes, want) {
		t.Fatalf("expected themes %v, got %v", want, got.Themes)
	}
}

func TestMergeScalarListsExactMatch(t *testing.T) {
	existing := NewResult()
	existing.PlotPoints = []string{"The fall"}
	incoming := NewResult()
	incoming.PlotPoints = []string{"the fall", "The fall"}

	got := Merge(existing, incoming)
	want := []string{"The fall", "the fall"}
	if !reflect.DeepEqual(got.PlotPoints, want) {
		t.Fatalf("expected plot points %v, got %v", want, got.PlotPoints)
	}
}

func TestMergeEntitiesCaseInsensitive(t *testing.T) {
	existing := NewResult()
	existing.Characters = []Fields{
		{"name": "Aria", "role": "Mage"},
		{"name": "Borin", "role": "Smith"},
	}
	incoming := NewResult()
	incoming.Characters = []Fields{
		{"name": "aria", "description": "Tall"},
		{"name": "Cael"},
	}

	got := Merge(existing, incoming)
	if len(got.Characters) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(got.Characters))
	}
	aria := got.Characters[0]
	if aria.String("role") != "Mage" {
		t.Fatalf("expected role Mage kept, got %q", aria.String("role"))
	}
	if aria.String("description") != "Tall" {
		t.Fatalf("expected description Tall, got %q", aria.String("description"))
	}
	// Incoming fields win, including the key's spelling.
	if aria.String("name") != "aria" {
		t.Fatalf("expected overlaid name aria, got %q", aria.String("name"))
	}
	if got.Characters[2].String("name") != "Cael" {
		t.Fatalf("expected Cael appended last, got %q", got.Characters[2].String("name"))
	}
}

func TestMergeOverlayReplacesField(t *testing.T) {
	existing := NewResult()
	existing.Events = []Fields{{"title": "The Siege", "date": "Year 3"}}
	incoming := NewResult()
	incoming.Events = []Fields{{"title": "THE SIEGE", "date": "Year 4"}}

	got := Merge(existing, incoming)
	if len(got.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got.Events))
	}
	if got.Events[0].String("date") != "Year 4" {
		t.Fatalf("expected date Year 4, got %q", got.Events[0].String("date"))
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := NewResult()
	existing.Locations = []Fields{{"name": "Harbor", "climate": "wet"}}
	incoming := NewResult()
	incoming.Locations = []Fields{{"name": "harbor", "climate": "dry"}}

	Merge(existing, incoming)
	if existing.Locations[0].String("climate") != "wet" {
		t.Fatalf("expected existing untouched, got %q", existing.Locations[0].String("climate"))
	}
}

func TestMergeNil(t *testing.T) {
	got := Merge(nil, nil)
	if got.Characters == nil || got.Themes == nil {
		t.Fatalf("expected empty lists, got %+v", got)
	}
}

func TestClean(t *testing.T) {
	r := NewResult()
	r.Characters = []Fields{{"name": "Aria"}, {"name": "  "}, {"role": "nameless"}, {"name": 7}}
	r.Events = []Fields{{"title": "Coronation"}, {"name": "wrong key"}}
	r.Themes = []string{"fate", "", "   "}
	r.WorldBuilding = []string{"\t", "Two moons"}

	got := Clean(r)
	if len(got.Characters) != 1 || got.Characters[0].String("name") != "Aria" {
		t.Fatalf("expected only Aria, got %v", got.Characters)
	}
	if len(got.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got.Events))
	}
	if !reflect.DeepEqual(got.Themes, []string{"fate"}) {
		t.Fatalf("expected themes [fate], got %v", got.Themes)
	}
	if !reflect.DeepEqual(got.WorldBuilding, []string{"Two moons"}) {
		t.Fatalf("expected world building [Two moons], got %v", got.WorldBuilding)
	}
}

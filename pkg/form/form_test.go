package form

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestBlankCarriesEveryField(t *testing.T) {
	snap := Blank()
	if err := snap.Complete(); err != nil {
		t.Fatalf("blank snapshot incomplete: %v", err)
	}
	if !snap.Get(ProjectType).IsSet() {
		t.Fatalf("expected projectType to be a set value")
	}
	if snap.Get(ProjectName).IsSet() {
		t.Fatalf("expected projectName to be a text value")
	}
}

func TestExampleTemplatePrefillsOnlyNarrativeFields(t *testing.T) {
	snap := ExampleTemplate()
	if err := snap.Complete(); err != nil {
		t.Fatalf("template incomplete: %v", err)
	}
	if snap.Text(ProjectName) != "" || snap.Text(ContactEmail) != "" {
		t.Fatalf("expected name and email to stay blank")
	}
	for _, id := range []FieldID{BusinessDescription, MainChallenge, TargetUsers, PrimaryGoal, SuccessMetrics} {
		if snap.Text(id) == "" {
			t.Fatalf("expected '%s' to be prefilled", id)
		}
	}
}

func TestToggleAddsAndRemoves(t *testing.T) {
	v := Options()
	v = v.Toggle("website")
	v = v.Toggle("mobile")
	if v.Len() != 2 || !v.Has("website") || !v.Has("mobile") {
		t.Fatalf("unexpected options after adding: %v", v)
	}
	v = v.Toggle("website")
	if v.Len() != 1 || v.Has("website") {
		t.Fatalf("expected website removed, got %v", v)
	}
	if v.Joined() != "mobile" {
		t.Fatalf("unexpected joined value %q", v.Joined())
	}
}

func TestToggleDoesNotAliasReceiver(t *testing.T) {
	orig := Options("a", "b")
	_ = orig.Toggle("c")
	if orig.Len() != 2 {
		t.Fatalf("toggle mutated the receiver: %v", orig)
	}
}

func TestOptionsDropDuplicates(t *testing.T) {
	v := Options("a", "b", "a")
	if v.Joined() != "a, b" {
		t.Fatalf("unexpected joined value %q", v.Joined())
	}
}

func TestValueEqualIgnoresSetOrder(t *testing.T) {
	if !Options("a", "b").Equal(Options("b", "a")) {
		t.Fatalf("expected equal sets")
	}
	if Options().Equal(Text("")) {
		t.Fatalf("empty set must differ from empty text")
	}
}

func TestSnapshotJSON(t *testing.T) {
	snap := Blank()
	snap[ProjectName] = Text("Acme")
	snap[ProjectType] = Options("website", "mobile")

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(raw), `"projectType":["website","mobile"]`) {
		t.Fatalf("expected set encoded as array, got %s", raw)
	}

	var back Snapshot
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.Equal(snap) {
		t.Fatalf("snapshot changed across JSON")
	}
}

func TestSnapshotUnmarshalFillsMissingAndRejectsUnknown(t *testing.T) {
	var snap Snapshot
	if err := json.Unmarshal([]byte(`{"projectName":"Acme","payments":null}`), &snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := snap.Complete(); err != nil {
		t.Fatalf("expected missing fields filled: %v", err)
	}
	if !snap.Get(Payments).IsSet() {
		t.Fatalf("expected null set field to decode as empty set")
	}

	if err := json.Unmarshal([]byte(`{"nope":"x"}`), &snap); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if err := json.Unmarshal([]byte(`{"projectName":["a"]}`), &snap); err == nil {
		t.Fatalf("expected kind mismatch to be rejected")
	}
}

func TestWithOverridesSkipsMismatches(t *testing.T) {
	out, skipped := WithOverrides(Blank(), map[FieldID]Value{
		ProjectName: Text("Acme"),
		Payments:    Text("card"),
		"unknown":   Text("x"),
	})
	if out.Text(ProjectName) != "Acme" {
		t.Fatalf("expected override applied")
	}
	if len(skipped) != 2 {
		t.Fatalf("expected two skipped overrides, got %v", skipped)
	}
}

func TestSectionsCoverCatalogueOnce(t *testing.T) {
	seen := NewFieldSet()
	for _, s := range Sections() {
		for _, id := range s.Fields {
			if seen.Has(id) {
				t.Fatalf("field '%s' listed twice", id)
			}
			seen.Add(id)
		}
	}
	if len(seen) != len(Fields()) {
		t.Fatalf("sections cover %d fields, catalogue has %d", len(seen), len(Fields()))
	}
}

func TestSnapshotCodecsAgree(t *testing.T) {
	snap := ExampleTemplate()
	snap[ProjectName] = Text("Acme")
	snap[BrandPersonality] = Options("Playful", "Modern")

	viaSonic, err := sonic.ConfigStd.Marshal(snap)
	if err != nil {
		t.Fatalf("sonic marshal failed: %v", err)
	}
	viaStd, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	if string(viaSonic) != string(viaStd) {
		t.Fatalf("codecs disagree:\nsonic: %s\njson:  %s", viaSonic, viaStd)
	}

	var back Snapshot
	if err := sonic.ConfigStd.Unmarshal(viaSonic, &back); err != nil {
		t.Fatalf("sonic unmarshal failed: %v", err)
	}
	if !back.Equal(snap) {
		t.Fatalf("snapshot changed across sonic")
	}
}

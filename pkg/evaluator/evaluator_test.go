package evaluator

import (
	"testing"

	"intakeform/pkg/form"
)

func validSnapshot() form.Snapshot {
	snap := form.ExampleTemplate()
	snap[form.ProjectName] = form.Text("Acme Portal")
	snap[form.UserScale] = form.Text("small")
	snap[form.UserAccounts] = form.Options("email")
	snap[form.Payments] = form.Options("none")
	snap[form.Timeline] = form.Text("1-3months")
	snap[form.Budget] = form.Text("10k-25k")
	snap[form.Priority] = form.Text("quality")
	snap[form.ContactEmail] = form.Text("owner@acme.io")
	snap[form.PreferredContact] = form.Text(form.ContactByEmail)
	return snap
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		id    form.FieldID
		value form.Value
		want  Class
	}{
		{"blank text", form.ProjectName, form.Text("  "), ClassEmpty},
		{"short text", form.ProjectName, form.Text("ab"), ClassPartial},
		{"text", form.ProjectName, form.Text(" abc "), ClassValid},
		{"bad email", form.ContactEmail, form.Text("a@b"), ClassPartial},
		{"email", form.ContactEmail, form.Text("a@b.co"), ClassValid},
		{"email with nbsp", form.ContactEmail, form.Text("a\u00a0b@c.com"), ClassPartial},
		{"email with tab", form.ContactEmail, form.Text("a\tb@c.com"), ClassPartial},
		{"short phone", form.ContactPhone, form.Text("555-1234"), ClassPartial},
		{"phone", form.ContactPhone, form.Text("(555) 123-4567"), ClassValid},
		{"select", form.Timeline, form.Text("asap"), ClassValid},
		{"empty set", form.Payments, form.Options(), ClassEmpty},
		{"set", form.Payments, form.Options("card"), ClassValid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.id, tc.value); got != tc.want {
				t.Fatalf("Classify(%s, %v) = %q, want %q", tc.id, tc.value, got, tc.want)
			}
		})
	}
}

func TestFeedbackHiddenUntilInteracted(t *testing.T) {
	snap := form.Blank()
	if got := Feedback(form.ProjectName, snap, form.NewFieldSet()); got != ClassNone {
		t.Fatalf("expected no feedback before interaction, got %q", got)
	}
	if got := Feedback(form.ProjectName, snap, form.NewFieldSet(form.ProjectName)); got != ClassEmpty {
		t.Fatalf("expected empty after interaction, got %q", got)
	}
}

func TestSectionCompletion(t *testing.T) {
	snap := form.Blank()
	if got := SectionCompletion(form.SectionBasics, snap); got != CompletionEmpty {
		t.Fatalf("expected empty basics, got %q", got)
	}
	snap[form.ProjectName] = form.Text("Acme")
	if got := SectionCompletion(form.SectionBasics, snap); got != CompletionPartial {
		t.Fatalf("expected partial basics, got %q", got)
	}

	if got := SectionCompletion(form.SectionFeatures, snap); got != CompletionEmpty {
		t.Fatalf("expected empty features, got %q", got)
	}
	snap[form.Payments] = form.Options("card")
	if got := SectionCompletion(form.SectionFeatures, snap); got != CompletionComplete {
		t.Fatalf("expected features complete with one selection, got %q", got)
	}

	snap[form.ContactEmail] = form.Text("a@b.co")
	if got := SectionCompletion(form.SectionContact, snap); got != CompletionPartial {
		t.Fatalf("expected partial contact without phone, got %q", got)
	}
	snap[form.ContactPhone] = form.Text("5551234567")
	snap[form.PreferredContact] = form.Text(form.ContactByEither)
	if got := SectionCompletion(form.SectionContact, snap); got != CompletionComplete {
		t.Fatalf("expected complete contact, got %q", got)
	}
}

func TestSectionsReportsEverySection(t *testing.T) {
	got := Sections(validSnapshot())
	if len(got) != len(form.Sections()) {
		t.Fatalf("expected %d sections, got %d", len(form.Sections()), len(got))
	}
	if got[form.SectionBasics] != CompletionComplete {
		t.Fatalf("expected basics complete, got %q", got[form.SectionBasics])
	}
}

func TestValidateFormAcceptsCompleteForm(t *testing.T) {
	interacted := form.NewFieldSet()
	errs := ValidateForm(validSnapshot(), interacted)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(interacted) != 0 {
		t.Fatalf("expected no fields marked, got %v", interacted.Sorted())
	}
}

func TestValidateFormMarksFailingFields(t *testing.T) {
	interacted := form.NewFieldSet()
	errs := ValidateForm(form.ExampleTemplate(), interacted)

	first, ok := errs.First()
	if !ok || first != form.ProjectName {
		t.Fatalf("expected projectName first, got %q", first)
	}
	if errs[form.ContactEmail] != "Email is required so we can contact you" {
		t.Fatalf("unexpected email message %q", errs[form.ContactEmail])
	}
	if _, ok := errs[form.ProjectType]; ok {
		t.Fatalf("projectType must not be required")
	}
	for id := range errs {
		if !interacted.Has(id) {
			t.Fatalf("expected '%s' marked interacted", id)
		}
	}
}

func TestValidateFormMessages(t *testing.T) {
	snap := validSnapshot()
	snap[form.BusinessDescription] = form.Text(" short ")
	snap[form.ContactEmail] = form.Text("nope")
	snap[form.PreferredContact] = form.Text(form.ContactByPhone)

	errs := ValidateForm(snap, nil)
	want := map[form.FieldID]string{
		form.BusinessDescription: "Business description should be at least 10 characters",
		form.ContactEmail:        "Please enter a valid email address",
		form.ContactPhone:        "Phone is required when selected as preferred contact method",
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs)
	}
	for id, msg := range want {
		if errs[id] != msg {
			t.Fatalf("error for '%s' = %q, want %q", id, errs[id], msg)
		}
	}
}

func TestValidateFieldOnBlur(t *testing.T) {
	snap := form.Blank()
	errs := ValidateField(form.ContactEmail, snap, nil)
	if errs[form.ContactEmail] != "Email is required" {
		t.Fatalf("unexpected blur message %q", errs[form.ContactEmail])
	}

	snap[form.ContactEmail] = form.Text("a@b.co")
	cleared := ValidateField(form.ContactEmail, snap, errs)
	if _, ok := cleared[form.ContactEmail]; ok {
		t.Fatalf("expected email error cleared")
	}
	if _, ok := errs[form.ContactEmail]; !ok {
		t.Fatalf("ValidateField mutated its input")
	}

	untouched := ValidateField(form.Timeline, snap, errs)
	if len(untouched) != len(errs) {
		t.Fatalf("fields without blur rules must leave errors unchanged")
	}
	if HasBlurRule(form.Timeline) {
		t.Fatalf("timeline has no blur rule")
	}
}

type fakeStrategy struct {
	name string
}

func (f *fakeStrategy) Name() string              { return f.name }
func (f *fakeStrategy) Classify(form.Value) Class { return ClassPartial }

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	resetRegistryForTests()
	defer resetRegistryForTests()

	MustRegister(&fakeStrategy{name: "dup"})

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when registering duplicate strategy")
		}
	}()

	MustRegister(&fakeStrategy{name: "dup"})
}

func TestGetNormalizesName(t *testing.T) {
	resetRegistryForTests()
	defer resetRegistryForTests()

	MustRegister(&fakeStrategy{name: "Custom"})

	got := Get(" custom ")
	if got == nil || got.Name() != "Custom" {
		t.Fatalf("expected to retrieve registered strategy got=%v", got)
	}
}

func TestClassifyWithoutStrategyReportsNone(t *testing.T) {
	resetRegistryForTests()
	defer resetRegistryForTests()

	// Occupy the once so builtins are not registered.
	builtinsOnce.Do(func() {})
	if got := Classify(form.ProjectName, form.Text("Acme")); got != ClassNone {
		t.Fatalf("expected ClassNone without strategy, got %q", got)
	}
}

func TestIsValidEmailRejectsUnicodeSpaces(t *testing.T) {
	for _, email := range []string{"a\u00a0b@c.com", "a@c\u2003d.com", "a@c.co\u3000m"} {
		if IsValidEmail(email) {
			t.Fatalf("expected %q to be rejected", email)
		}
	}
	if !IsValidEmail("first.last@sub.example.org") {
		t.Fatalf("expected plain address to pass")
	}
}

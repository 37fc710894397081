package config

import (
	"fmt"
	"log"

	"gopkg.in/yaml.v3"

	"intakeform/pkg/evaluator"
	"intakeform/pkg/form"
)

// FormConfig is the display catalogue: section titles, field labels, choice
// options and optional overrides of the starting template.
type FormConfig struct {
	Sections map[string]SectionConfig `yaml:"sections"`
	Fields   map[string]FieldConfig   `yaml:"fields"`
	Template map[string]TemplateValue `yaml:"template,omitempty"`
	Metadata map[string]string        `yaml:"metadata,omitempty"`
}

type SectionConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

type FieldConfig struct {
	Label       string   `yaml:"label"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Options     []string `yaml:"options,omitempty"`
}

// TemplateValue accepts either a scalar or a list in YAML.
type TemplateValue struct {
	form.Value
}

func (tv *TemplateValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var opts []string
		if err := node.Decode(&opts); err != nil {
			return err
		}
		tv.Value = form.Options(opts...)
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		tv.Value = form.Text(s)
	default:
		return fmt.Errorf("line %d: template value must be a string or a list", node.Line)
	}
	return nil
}

func (fc *FormConfig) Validate() error {
	if fc == nil {
		return fmt.Errorf("config is nil")
	}

	for _, section := range form.Sections() {
		conf, ok := fc.Sections[string(section.ID)]
		if !ok {
			return fmt.Errorf("config validation failed: section '%s' is missing", section.ID)
		}
		if conf.Title == "" {
			return fmt.Errorf("config validation failed: section '%s' has no title", section.ID)
		}
	}
	for sectionID := range fc.Sections {
		if !form.KnownSection(form.SectionID(sectionID)) {
			return fmt.Errorf("config validation failed: unknown section '%s'", sectionID)
		}
	}

	for fieldID, field := range fc.Fields {
		f, ok := form.Lookup(form.FieldID(fieldID))
		if !ok {
			return fmt.Errorf("config validation failed: unknown field '%s'", fieldID)
		}
		if field.Label == "" {
			return fmt.Errorf("config validation failed: field '%s' has no label", fieldID)
		}
		if err := validateOptions(f, field); err != nil {
			return err
		}
	}
	for _, f := range form.Fields() {
		if _, ok := fc.Fields[string(f.ID)]; !ok {
			return fmt.Errorf("config validation failed: field '%s' is missing", f.ID)
		}
	}

	for fieldID, tv := range fc.Template {
		f, ok := form.Lookup(form.FieldID(fieldID))
		if !ok {
			return fmt.Errorf("config validation failed: template sets unknown field '%s'", fieldID)
		}
		if !tv.Matches(f.Kind) {
			return fmt.Errorf("config validation failed: template value for '%s' does not fit kind '%s'", fieldID, f.Kind)
		}
	}
	return nil
}

func validateOptions(f form.Field, field FieldConfig) error {
	switch f.Kind {
	case form.KindSelect, form.KindMulti:
		if len(field.Options) == 0 {
			return fmt.Errorf("config validation failed: field '%s' is kind '%s' but has no options", f.ID, f.Kind)
		}
		seen := make(map[string]bool, len(field.Options))
		for j, option := range field.Options {
			if option == "" {
				return fmt.Errorf("config validation failed: option #%d for field '%s' is empty", j+1, f.ID)
			}
			if seen[option] {
				return fmt.Errorf("config validation failed: duplicate option '%s' for field '%s'", option, f.ID)
			}
			seen[option] = true
		}
		if f.ID == form.PreferredContact {
			for _, want := range []string{form.ContactByEmail, form.ContactByPhone, form.ContactByEither} {
				if !seen[want] {
					return fmt.Errorf("config validation failed: field '%s' must offer '%s'", f.ID, want)
				}
			}
		}
	default:
		if len(field.Options) > 0 {
			log.Printf("Warning: field '%s' is kind '%s' but has options defined", f.ID, f.Kind)
		}
	}
	return nil
}

// SectionTitle returns the configured title, or "" when unset.
func (fc *FormConfig) SectionTitle(id form.SectionID) string {
	return fc.Sections[string(id)].Title
}

// FieldLabel returns the configured label, or "" when unset.
func (fc *FormConfig) FieldLabel(id form.FieldID) string {
	return fc.Fields[string(id)].Label
}

// Choices lists the options of a choice field.
func (fc *FormConfig) Choices(id form.FieldID) []string {
	return append([]string(nil), fc.Fields[string(id)].Options...)
}

// AllowsValue reports whether every option in v is offered by the field.
// Text fields and blank single choices always pass.
func (fc *FormConfig) AllowsValue(id form.FieldID, v form.Value) bool {
	switch form.KindOf(id) {
	case form.KindSelect:
		return v.Text() == "" || fc.hasOption(id, v.Text())
	case form.KindMulti:
		for _, o := range v.Options() {
			if !fc.hasOption(id, o) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (fc *FormConfig) hasOption(id form.FieldID, option string) bool {
	for _, o := range fc.Fields[string(id)].Options {
		if o == option {
			return true
		}
	}
	return false
}

// StartTemplate is the example template with configured overrides applied.
func (fc *FormConfig) StartTemplate() form.Snapshot {
	if len(fc.Template) == 0 {
		return form.ExampleTemplate()
	}
	overrides := make(map[form.FieldID]form.Value, len(fc.Template))
	for id, tv := range fc.Template {
		overrides[form.FieldID(id)] = tv.Value
	}
	snap, skipped := form.WithOverrides(form.ExampleTemplate(), overrides)
	for _, id := range skipped {
		log.Printf("Warning: template override for '%s' ignored", id)
	}
	return snap
}

// FieldDescriptor is the public description of one field.
type FieldDescriptor struct {
	ID          form.FieldID `json:"id"`
	Kind        form.Kind    `json:"kind"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []string     `json:"options,omitempty"`
	// ValidatesOnBlur tells the renderer to call blur rather than touch.
	ValidatesOnBlur bool `json:"validates_on_blur"`
}

// SectionDescriptor is the public description of one section.
type SectionDescriptor struct {
	ID          form.SectionID    `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDescriptor `json:"fields"`
}

// Describe lays out the catalogue in display order.
func (fc *FormConfig) Describe() []SectionDescriptor {
	out := make([]SectionDescriptor, 0, len(form.Sections()))
	for _, section := range form.Sections() {
		sc := fc.Sections[string(section.ID)]
		desc := SectionDescriptor{ID: section.ID, Title: sc.Title, Description: sc.Description}
		for _, id := range section.Fields {
			fcfg := fc.Fields[string(id)]
			desc.Fields = append(desc.Fields, FieldDescriptor{
				ID:              id,
				Kind:            form.KindOf(id),
				Label:           fcfg.Label,
				Placeholder:     fcfg.Placeholder,
				Options:         fc.Choices(id),
				ValidatesOnBlur: evaluator.HasBlurRule(id),
			})
		}
		out = append(out, desc)
	}
	return out
}

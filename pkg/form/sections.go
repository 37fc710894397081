package form

// SectionID names one of the fixed form sections.
type SectionID string

const (
	SectionBasics      SectionID = "basics"
	SectionProjectType SectionID = "projectType"
	SectionUsers       SectionID = "users"
	SectionFeatures    SectionID = "features"
	SectionTimeline    SectionID = "timeline"
	SectionLook        SectionID = "look"
	SectionSuccess     SectionID = "success"
	SectionContact     SectionID = "contact"
)

// Section groups fields for display and completion tracking.
type Section struct {
	ID     SectionID
	Fields []FieldID
}

var sections = []Section{
	{ID: SectionBasics, Fields: []FieldID{ProjectName, BusinessDescription, MainChallenge}},
	{ID: SectionProjectType, Fields: []FieldID{ProjectType}},
	{ID: SectionUsers, Fields: []FieldID{TargetUsers, PrimaryGoal, UserScale}},
	{ID: SectionFeatures, Fields: []FieldID{UserAccounts, Payments, ContentFeatures, CommunicationFeatures, SpecialFeatures}},
	{ID: SectionTimeline, Fields: []FieldID{Timeline, Budget}},
	{ID: SectionLook, Fields: []FieldID{Examples, BrandPersonality, BrandInfo}},
	{ID: SectionSuccess, Fields: []FieldID{SuccessMetrics, Priority, AdditionalInfo}},
	{ID: SectionContact, Fields: []FieldID{ContactEmail, ContactPhone, PreferredContact, ReferralSource}},
}

// Sections returns the fixed section list in display order.
func Sections() []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = Section{ID: s.ID, Fields: append([]FieldID(nil), s.Fields...)}
	}
	return out
}

// KnownSection reports whether id is one of the fixed sections.
func KnownSection(id SectionID) bool {
	for _, s := range sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

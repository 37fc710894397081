package form

// FieldID identifies one field of the intake form.
type FieldID string

const (
	ProjectName           FieldID = "projectName"
	ProjectType           FieldID = "projectType"
	BusinessDescription   FieldID = "businessDescription"
	MainChallenge         FieldID = "mainChallenge"
	TargetUsers           FieldID = "targetUsers"
	PrimaryGoal           FieldID = "primaryGoal"
	UserScale             FieldID = "userScale"
	UserAccounts          FieldID = "userAccounts"
	Payments              FieldID = "payments"
	ContentFeatures       FieldID = "contentFeatures"
	CommunicationFeatures FieldID = "communicationFeatures"
	SpecialFeatures       FieldID = "specialFeatures"
	Timeline              FieldID = "timeline"
	Budget                FieldID = "budget"
	Examples              FieldID = "examples"
	BrandPersonality      FieldID = "brandPersonality"
	BrandInfo             FieldID = "brandInfo"
	SuccessMetrics        FieldID = "successMetrics"
	Priority              FieldID = "priority"
	AdditionalInfo        FieldID = "additionalInfo"
	ContactEmail          FieldID = "contactEmail"
	ContactPhone          FieldID = "contactPhone"
	PreferredContact      FieldID = "preferredContact"
	ReferralSource        FieldID = "referralSource"
)

// Kind is the declared shape and validation flavour of a field.
type Kind string

const (
	KindText   Kind = "text"
	KindEmail  Kind = "email"
	KindPhone  Kind = "phone"
	KindSelect Kind = "select"
	KindMulti  Kind = "multi"
)

// IsSet reports whether fields of this kind hold a set of options.
func (k Kind) IsSet() bool {
	return k == KindMulti
}

// Preferred contact choices.
const (
	ContactByEmail  = "email"
	ContactByPhone  = "phone"
	ContactByEither = "either"
)

// Field describes one entry of the fixed catalogue.
type Field struct {
	ID FieldID
	// Kind decides both the value shape and the classification rules.
	Kind Kind
	// WireKey is the flat key used in outbound submissions.
	WireKey string
}

var catalogue = []Field{
	{ID: ProjectName, Kind: KindText, WireKey: "project_name"},
	{ID: ProjectType, Kind: KindMulti, WireKey: "project_type"},
	{ID: BusinessDescription, Kind: KindText, WireKey: "business_description"},
	{ID: MainChallenge, Kind: KindText, WireKey: "main_challenge"},
	{ID: TargetUsers, Kind: KindText, WireKey: "target_users"},
	{ID: PrimaryGoal, Kind: KindText, WireKey: "primary_goal"},
	{ID: UserScale, Kind: KindSelect, WireKey: "user_scale"},
	{ID: UserAccounts, Kind: KindMulti, WireKey: "user_accounts"},
	{ID: Payments, Kind: KindMulti, WireKey: "payments"},
	{ID: ContentFeatures, Kind: KindMulti, WireKey: "content_features"},
	{ID: CommunicationFeatures, Kind: KindMulti, WireKey: "communication_features"},
	{ID: SpecialFeatures, Kind: KindMulti, WireKey: "special_features"},
	{ID: Timeline, Kind: KindSelect, WireKey: "timeline"},
	{ID: Budget, Kind: KindSelect, WireKey: "budget"},
	{ID: Examples, Kind: KindText, WireKey: "examples"},
	{ID: BrandPersonality, Kind: KindMulti, WireKey: "brand_personality"},
	{ID: BrandInfo, Kind: KindText, WireKey: "brand_info"},
	{ID: SuccessMetrics, Kind: KindText, WireKey: "success_metrics"},
	{ID: Priority, Kind: KindSelect, WireKey: "priority"},
	{ID: AdditionalInfo, Kind: KindText, WireKey: "additional_info"},
	{ID: ContactEmail, Kind: KindEmail, WireKey: "contact_email"},
	{ID: ContactPhone, Kind: KindPhone, WireKey: "contact_phone"},
	{ID: PreferredContact, Kind: KindSelect, WireKey: "preferred_contact"},
	{ID: ReferralSource, Kind: KindText, WireKey: "referral_source"},
}

var byID = func() map[FieldID]Field {
	m := make(map[FieldID]Field, len(catalogue))
	for _, f := range catalogue {
		m[f.ID] = f
	}
	return m
}()

// Fields returns the catalogue in form order.
func Fields() []Field {
	out := make([]Field, len(catalogue))
	copy(out, catalogue)
	return out
}

// Lookup returns the catalogue entry for id.
func Lookup(id FieldID) (Field, bool) {
	f, ok := byID[id]
	return f, ok
}

// KindOf returns the declared kind of id, or "" for unknown identifiers.
func KindOf(id FieldID) Kind {
	return byID[id].Kind
}

// Known reports whether id belongs to the fixed catalogue.
func Known(id FieldID) bool {
	_, ok := byID[id]
	return ok
}

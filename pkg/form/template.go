package form

// Example copy prefilled into a fresh session.
const (
	exampleBusinessDescription = "We provide Software as a Service (SaaS) solutions, including our flagship location-based gaming platform geoLARP.com. Our focus is making custom software accessible to businesses of all sizes."
	exampleMainChallenge       = "Helping small businesses discover that custom software is within their reach, while streamlining our client acquisition and consultation process."
	exampleTargetUsers         = "Small businesses and startups who need custom software but assume it's beyond their budget. We show them affordable, scalable solutions are possible."
	examplePrimaryGoal         = "Learn about our services and easily schedule a consultation to discuss their custom software needs."
	exampleSuccessMetrics      = "Generate 10+ qualified leads per month. Book 5+ discovery calls monthly. Build sustainable six-figure revenue stream. Maintain creative freedom and enjoyment in our work. Help small businesses achieve their software goals."
)

// ExampleTemplate is the fixed starting point of a new session and the
// state restored by reset.
func ExampleTemplate() Snapshot {
	s := Blank()
	s[BusinessDescription] = Text(exampleBusinessDescription)
	s[MainChallenge] = Text(exampleMainChallenge)
	s[TargetUsers] = Text(exampleTargetUsers)
	s[PrimaryGoal] = Text(examplePrimaryGoal)
	s[SuccessMetrics] = Text(exampleSuccessMetrics)
	return s
}

// WithOverrides returns a copy of base with the given values applied.
// Unknown ids and shape mismatches are skipped and reported back.
func WithOverrides(base Snapshot, overrides map[FieldID]Value) (Snapshot, []FieldID) {
	out := base.Clone()
	var skipped []FieldID
	for id, v := range overrides {
		f, ok := Lookup(id)
		if !ok || !v.Matches(f.Kind) {
			skipped = append(skipped, id)
			continue
		}
		out[id] = v.clone()
	}
	return out, skipped
}

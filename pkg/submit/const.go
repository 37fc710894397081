package submit

const (
	StatusIdle       = "idle"
	StatusSubmitting = "submitting"
	StatusSuccess    = "success"
	StatusError      = "error"
	// StatusInvalid is reported when validation blocked dispatch; the
	// machine state is left untouched.
	StatusInvalid = "invalid"
)

const (
	EventSubmit  = "submit"
	EventSucceed = "succeed"
	EventFail    = "fail"
)

const (
	ProviderWeb3Forms = "web3forms"
	ProviderEmailJS   = "emailjs"
)

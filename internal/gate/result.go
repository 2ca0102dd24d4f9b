package gate

// Result is the gateway's verdict for one payload. Valid tracks the
// error list exactly: appending an error flips it, warnings never do.
type Result struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

func OK() Result {
	return Result{Valid: true, Errors: []string{}}
}

func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Absorb appends another verdict's errors and warnings, prefixing each
// with tag when it is non-empty.
func (r *Result) Absorb(tag string, other Result) {
	for _, e := range other.Errors {
		r.AddError(tag + e)
	}
	for _, w := range other.Warnings {
		r.AddWarning(tag + w)
	}
}

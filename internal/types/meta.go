package types

// ResponseMeta carries response metadata alongside the data payload.
// Warnings holds non-fatal load warnings (skipped rows, rejected values) so
// clients can surface data-quality problems without the request failing.
type ResponseMeta struct {
	Warnings []string `json:"warnings,omitempty"`
}

// WarningsMeta builds a ResponseMeta from load warnings, or nil when there
// are none. Returning nil keeps the meta object out of clean responses.
func WarningsMeta(warnings []LoadWarning) *ResponseMeta {
	if len(warnings) == 0 {
		return nil
	}
	meta := &ResponseMeta{Warnings: make([]string, len(warnings))}
	for i, w := range warnings {
		meta.Warnings[i] = w.String()
	}
	return meta
}

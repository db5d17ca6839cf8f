//go:generate stringer -type=Status
package translate

// Status of a lookup result
type Status int

const (
	// NotApplicable - english source or a word too short to translate
	NotApplicable Status = iota
	// Pending - resolution is in progress
	Pending
	// Resolved - a provider returned the translation
	Resolved
	// Failed - all providers failed, terminal
	Failed
)

const (
	// PendingText is shown while a lookup is in progress
	PendingText = "translating..."
	// UnavailableText is shown after all providers failed
	UnavailableText = "unavailable"
)

// Name returns the lowercase wire name
func (s Status) Name() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return "na"
}

// MarshalText writes status as lowercase name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.Name()), nil
}

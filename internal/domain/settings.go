package domain

// Rule is a keyword-triggered policy that alters reply content and delay.
// Names are not required to be unique; scoring resolves overlaps.
type Rule struct {
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords"`
	Priority     int      `json:"priority"`
	Instructions string   `json:"instructions,omitempty"`
	// Enabled defaults to true when absent; only an explicit false disables.
	Enabled      *bool `json:"enabled,omitempty"`
	DelaySeconds *int  `json:"delaySeconds,omitempty"`
}

func (r Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Settings is the process-wide responder configuration. A snapshot is loaded
// per operation and passed by value into the matcher, composer and worker.
type Settings struct {
	EnableAutoResponder bool   `json:"enableAutoResponder"`
	Subject             string `json:"subject"`
	Signature           string `json:"signature"`
	Tone                string `json:"tone"`
	MaxSentences        int    `json:"maxSentences"`
	FromEmail           string `json:"fromEmail"`
	OwnerEmail          string `json:"ownerEmail"`
	BusinessName        string `json:"businessName"`
	SystemInstructions  string `json:"systemInstructions"`
	Rules               []Rule `json:"sections"`
	DefaultDelaySeconds int    `json:"defaultDelaySeconds"`
}

func DefaultSettings() Settings {
	return Settings{
		EnableAutoResponder: true,
		Subject:             "Thank you for reaching out",
		Tone:                "friendly, concise, professional",
		MaxSentences:        2,
		Rules:               []Rule{},
		DefaultDelaySeconds: 0,
	}
}

// DelayFor returns the effective send delay in seconds for a job matched to
// the given rule (nil for no match).
func (s Settings) DelayFor(matched *Rule) int {
	if matched != nil && matched.DelaySeconds != nil {
		return *matched.DelaySeconds
	}
	return s.DefaultDelaySeconds
}

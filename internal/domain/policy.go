package domain

// PolicyAction tells the agent what to do with a flagged caption.
type PolicyAction string

const (
	PolicyAllow PolicyAction = "allow"
	PolicyWarn  PolicyAction = "warn"
	PolicyBlock PolicyAction = "block"
)

// PolicyVerdict aggregates content-policy rule matches for a draft.
type PolicyVerdict struct {
	Action       PolicyAction
	Reasons      []string
	MatchedRules []string
}

// Blocked reports whether the verdict forbids publishing.
func (v PolicyVerdict) Blocked() bool {
	return v.Action == PolicyBlock
}

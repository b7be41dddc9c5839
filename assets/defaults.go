package assets

import (
	_ "embed"
)

// DefaultPolicyYAML contains the embedded default content-policy rules.
//
//go:embed defaults/policy.yaml
var DefaultPolicyYAML []byte

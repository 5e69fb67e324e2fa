// file: internal/registry/names.go
package registry

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// EntityKind identifies which MCP entity a name-validation rule applies to.
type EntityKind string

// The two name-keyed entities. Resources are keyed by URI and are not
// subject to these rules.
const (
	EntityTool   EntityKind = "tool"
	EntityPrompt EntityKind = "prompt"
)

// nameRule is the validation rule for one entity kind's name.
type nameRule struct {
	pattern     *regexp.Regexp
	description string
	maxLength   int
}

// Observed naming convention across MCP hosts: lowerCamelCase, alphanumeric
// only, capped well under typical client-side display limits.
var nameRules = map[EntityKind]nameRule{
	EntityTool: {
		pattern:     regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
		description: "must start with a lowercase letter, followed by alphanumeric characters only",
		maxLength:   64,
	},
	EntityPrompt: {
		pattern:     regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
		description: "must start with a lowercase letter, followed by alphanumeric characters only",
		maxLength:   64,
	},
}

// ValidateName checks name against the convention for the given entity kind.
func ValidateName(kind EntityKind, name string) error {
	rule, ok := nameRules[kind]
	if !ok {
		return errors.Newf("unknown entity kind: %s", kind)
	}
	if len(name) == 0 {
		return errors.Newf("empty %s name is not allowed", kind)
	}
	if len(name) > rule.maxLength {
		return errors.Newf("%s name exceeds maximum length of %d characters", kind, rule.maxLength)
	}
	if !rule.pattern.MatchString(name) {
		return errors.Newf("invalid %s name %q: %s", kind, name, rule.description)
	}
	return nil
}

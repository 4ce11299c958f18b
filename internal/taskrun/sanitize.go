package taskrun

import (
	"fmt"
	"regexp"
)

var nonWordRun = regexp.MustCompile(`\W`)

// sanitizeIdentifier maps an arbitrary task id to a valid variable-name
// fragment: every non-word character becomes "_", and a leading digit
// gets an "X" prefix so the result never collides with a numeric
// sequence index when spliced into a variable path.
func sanitizeIdentifier(s string) string {
	out := nonWordRun.ReplaceAllString(s, "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "X" + out
	}
	return out
}

// sanitizeProducers maps each producer's task id through
// sanitizeIdentifier and fails fatally if two distinct task ids collide
// on the same sanitized form, per the combined-input collision rule:
// silently overwriting one producer's variables with another's would
// corrupt the wrapper's view of its inputs.
func sanitizeProducers(taskIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(taskIDs))
	seen := map[string]string{}
	for _, id := range taskIDs {
		s := sanitizeIdentifier(id)
		if other, ok := seen[s]; ok && other != id {
			return nil, fmt.Errorf("combined input producer ids %q and %q both sanitize to %q", other, id, s)
		}
		seen[s] = id
		out[id] = s
	}
	return out, nil
}

package planner

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Generative output reliably violates strict JSON in predictable ways;
// a fixed-order sequence of textual repairs before parsing is cheaper and
// more robust than prompting alone.
var (
	fencedBlockPattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyPattern       = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_-]*)\s*:`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// CleanResponse applies the repair heuristics to raw model text, in order:
// code-fence extraction, brace-span trimming, quote normalization,
// trailing-comma removal, bare-key quoting, whitespace collapsing.
// It is a pure text transformation and never fails.
func CleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if m := fencedBlockPattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	// Discard leading/trailing prose outside the outermost object.
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	s = s[first : last+1]

	s = strings.ReplaceAll(s, "'", `"`)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = bareKeyPattern.ReplaceAllString(s, `$1"$2":`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = whitespaceRunPattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// ParseResponse cleans raw model text and attempts a strict JSON parse into
// a generic object. ok is false when the text is unrecoverable; this
// function never returns an error, matching the policy that malformed
// upstream responses downgrade to "try the next model".
func ParseResponse(raw string) (map[string]interface{}, bool) {
	cleaned := CleanResponse(raw)
	if cleaned == "" {
		return nil, false
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

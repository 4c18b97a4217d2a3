package scanner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/grovetools/toolchange/config"
	"github.com/grovetools/toolchange/errors"
)

// DefaultRules recognise the slicer comment annotation, a direct call of the
// Klipper macro, and the standard M600 filament change command.
var DefaultRules = []config.MarkerRule{
	{
		Name:    "comment",
		Pattern: `;\s*MANUAL_TOOL_CHANGE\s+T(?P<tool>\d+)`,
	},
	{
		Name:    "macro",
		Pattern: `(?i)^\s*MANUAL_TOOL_CHANGE\b(?:[^;]*?\bT\s*=\s*(?P<tool>\d+))?`,
	},
	{
		Name:    "m600",
		Pattern: `(?i)^\s*M600\b(?:[^;]*?\bT(?P<tool>\d+))?`,
	},
}

// metadataPattern matches KEY=VALUE tokens anywhere on a marker line.
// Values may be double or single quoted to carry spaces.
var metadataPattern = regexp.MustCompile(`(?i)(?:^|[\s;,])(COLOR|COLOUR|BRAND|MATERIAL|TOOL|T)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s;,"']+))`)

// toolWordPattern matches a bare T<n> parameter.
var toolWordPattern = regexp.MustCompile(`(?i)(?:^|\s)T(\d+)\b`)

// Marker is what a matching rule extracted from one line.
type Marker struct {
	Rule     string
	Tool     int
	Color    string
	Brand    string
	Material string
}

type rule struct {
	name string
	re   *regexp.Regexp
}

// Matcher is an ordered list of marker rules. The first matching rule wins.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles the given rules. An empty list selects DefaultRules.
func NewMatcher(rules []config.MarkerRule) (*Matcher, error) {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	m := &Matcher{rules: make([]rule, 0, len(rules))}
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("marker rule %d does not compile", i)).
				WithDetail("pattern", r.Pattern)
		}
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rule%d", i+1)
		}
		m.rules = append(m.rules, rule{name: name, re: re})
	}
	return m, nil
}

// Rules returns the names of the compiled rules in match order.
func (m *Matcher) Rules() []string {
	names := make([]string, len(m.rules))
	for i, r := range m.rules {
		names[i] = r.name
	}
	return names
}

// Match reports whether line is a tool change marker and extracts its metadata.
// Named groups take precedence over KEY=VALUE tokens on the line.
func (m *Matcher) Match(line string) (Marker, bool) {
	for _, r := range m.rules {
		sub := r.re.FindStringSubmatch(line)
		if sub == nil {
			continue
		}

		groups := make(map[string]string)
		for i, name := range r.re.SubexpNames() {
			if name != "" && sub[i] != "" {
				groups[name] = sub[i]
			}
		}
		meta := parseMetadata(line)

		marker := Marker{
			Rule:     r.name,
			Color:    firstNonEmpty(groups["color"], meta["color"]),
			Brand:    firstNonEmpty(groups["brand"], meta["brand"]),
			Material: firstNonEmpty(groups["material"], meta["material"]),
		}
		marker.Tool = parseTool(groups["tool"], meta["tool"], line)
		return marker, true
	}
	return Marker{}, false
}

// parseMetadata collects KEY=VALUE tokens with lower-cased, canonical keys.
// The first occurrence of a key wins.
func parseMetadata(line string) map[string]string {
	meta := make(map[string]string)
	for _, sub := range metadataPattern.FindAllStringSubmatch(line, -1) {
		key := strings.ToLower(sub[1])
		switch key {
		case "colour":
			key = "color"
		case "t":
			key = "tool"
		}
		value := firstNonEmpty(sub[2], sub[3], sub[4])
		if _, seen := meta[key]; !seen && value != "" {
			meta[key] = strings.TrimSpace(value)
		}
	}
	return meta
}

// parseTool resolves the tool number: named group, then TOOL=/T= metadata,
// then a bare T<n> word, then 0.
func parseTool(group, meta, line string) int {
	for _, candidate := range []string{group, meta} {
		if n, err := strconv.Atoi(candidate); err == nil && n >= 0 {
			return n
		}
	}
	if sub := toolWordPattern.FindStringSubmatch(line); sub != nil {
		if n, err := strconv.Atoi(sub[1]); err == nil {
			return n
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

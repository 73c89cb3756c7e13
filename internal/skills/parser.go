package skills

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"inkwell/pkg/inktypes"
)

// defaultVersion is assumed when a document declares no version or an
// unparseable one.
const defaultVersion = "1.0.0"

// Parse turns one skill document into a Skill. The document may start
// with a front-matter block delimited by "---" lines containing
// "key: value" entries (name, description, version, triggers as a
// comma-separated list); everything after the block is the instruction
// text, starting at the first non-blank line and kept verbatim from
// there on. Parsing never fails: missing or malformed fields fall back
// to their defaults, and a document without usable instructions yields
// the whole raw text as instructions. fallbackName names the skill when
// the front matter does not.
func Parse(content, fallbackName string) inktypes.Skill {
	skill := inktypes.Skill{
		Name:    fallbackName,
		Version: defaultVersion,
		Enabled: true,
	}

	var instructions strings.Builder
	inFrontmatter := false
	inInstructions := false

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "---" {
			inFrontmatter = !inFrontmatter
			continue
		}

		switch {
		case inFrontmatter:
			parseField(&skill, line)
		case !inInstructions && strings.TrimSpace(line) != "":
			inInstructions = true
			instructions.WriteString(line)
		case inInstructions:
			instructions.WriteString("\n")
			instructions.WriteString(line)
		}
	}

	skill.Instructions = instructions.String()
	if skill.Instructions == "" {
		skill.Instructions = content
	}
	if skill.Name == "" {
		skill.Name = fallbackName
	}
	if _, err := semver.NewVersion(skill.Version); err != nil {
		skill.Version = defaultVersion
	}
	return skill
}

// parseField applies one front-matter line to the skill. Unrecognized
// keys are ignored.
func parseField(skill *inktypes.Skill, line string) {
	switch {
	case strings.HasPrefix(line, "name:"):
		skill.Name = strings.TrimSpace(strings.TrimPrefix(line, "name:"))
	case strings.HasPrefix(line, "description:"):
		skill.Description = strings.TrimSpace(strings.TrimPrefix(line, "description:"))
	case strings.HasPrefix(line, "version:"):
		skill.Version = strings.TrimSpace(strings.TrimPrefix(line, "version:"))
	case strings.HasPrefix(line, "triggers:"):
		skill.Triggers = splitTriggers(strings.TrimPrefix(line, "triggers:"))
	}
}

// splitTriggers parses a comma-separated trigger list, dropping empty
// entries.
func splitTriggers(value string) []string {
	var triggers []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			triggers = append(triggers, trimmed)
		}
	}
	return triggers
}

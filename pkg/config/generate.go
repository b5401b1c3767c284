package config

import (
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
)

// Template returns a config.toml with every default commented out, ready to
// be edited by the user.
func Template() string {
	return commentOutConfigValues(DefaultsContent())
}

// commentOutConfigValues comments out every assignment line, keeping blank
// lines, comments and section headers.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"):
			result = append(result, line)
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			result = append(result, line)
		default:
			result = append(result, "# "+line)
		}
	}

	return strings.Join(result, "\n")
}

// Marshal renders cfg as TOML with secrets masked
func Marshal(cfg *Config) ([]byte, error) {
	return gotoml.Marshal(cfg.Redacted())
}

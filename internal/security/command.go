package security

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CheckCommand decides whether a shell command may run.
//
// Check order matters: blacklist substrings first, then dangerous patterns,
// then the restricted-executable check on the first token. First match wins.
func (p *Policy) CheckCommand(command string) Decision {
	if !p.enableBash {
		return Deny("Bash execution is disabled in configuration")
	}

	if !p.safeMode {
		p.logger.Warn("safe mode disabled, allowing command", zap.String("command", command))
		return Allow()
	}

	commandLower := strings.ToLower(command)

	for _, blacklisted := range blacklistedCommands {
		if strings.Contains(commandLower, strings.ToLower(blacklisted)) {
			p.logger.Warn("blocked blacklisted command", zap.String("command", command))
			return Deny(fmt.Sprintf("Command contains blacklisted pattern: %s", blacklisted))
		}
	}

	for _, pattern := range restrictedPatterns {
		if pattern.MatchString(commandLower) {
			p.logger.Warn("blocked command matching restricted pattern", zap.String("command", command))
			return Deny(fmt.Sprintf("Command matches restricted pattern: %s", pattern.String()))
		}
	}

	parts, err := SplitCommand(command)
	if err != nil {
		return Deny(fmt.Sprintf("Error parsing command: %v", err))
	}
	if len(parts) == 0 {
		return Deny("Empty command")
	}

	if restrictedExecutables[parts[0]] {
		p.logger.Warn("blocked restricted command", zap.String("command", command))
		return Deny(fmt.Sprintf("Command '%s' is restricted in safe mode", parts[0]))
	}

	return Allow()
}

// SplitCommand tokenizes a shell command line honoring single quotes,
// double quotes and backslash escapes. It does not expand variables or globs.
func SplitCommand(command string) ([]string, error) {
	var fields []string
	var current strings.Builder
	inField := false

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("trailing backslash")
			}
			i++
			current.WriteRune(runes[i])
			inField = true
		case c == '\'':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\'' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("unterminated single quote")
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end
			inField = true
		case c == '"':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\\' {
					j++
					continue
				}
				if runes[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("unterminated double quote")
			}
			for j := i + 1; j < end; j++ {
				if runes[j] == '\\' && j+1 < end && (runes[j+1] == '"' || runes[j+1] == '\\') {
					j++
				}
				current.WriteRune(runes[j])
			}
			i = end
			inField = true
		case c == ' ' || c == '\t' || c == '\n':
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			current.WriteRune(c)
			inField = true
		}
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}

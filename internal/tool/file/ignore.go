package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher filters search and grep results through the workspace
// .gitignore. A missing .gitignore yields a matcher that never ignores.
type ignoreMatcher struct {
	matcher gitignore.Matcher
}

func newIgnoreMatcher(root string) *ignoreMatcher {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return &ignoreMatcher{}
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if pattern := gitignore.ParsePattern(line, nil); pattern != nil {
			patterns = append(patterns, pattern)
		}
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns)}
}

func (m *ignoreMatcher) shouldIgnore(relativePath string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(relativePath), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return m.matcher.Match(segments, isDir)
}

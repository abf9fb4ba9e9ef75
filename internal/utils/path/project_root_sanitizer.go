package pathutils

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// ProjectRootSanitizer normalizes directory root inputs consistently across commands.
// It trims whitespace, expands home-directory shortcuts, drops empty entries, and
// prunes roots nested inside other provided roots so no file is processed twice.
type ProjectRootSanitizer struct {
	homeExpander *HomeExpander
}

// NewProjectRootSanitizer constructs a ProjectRootSanitizer with the operating system home lookup.
func NewProjectRootSanitizer() *ProjectRootSanitizer {
	return &ProjectRootSanitizer{homeExpander: NewHomeExpander()}
}

// NewProjectRootSanitizerWithExpander constructs a ProjectRootSanitizer using the provided expander.
func NewProjectRootSanitizerWithExpander(homeExpander *HomeExpander) *ProjectRootSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}
	return &ProjectRootSanitizer{homeExpander: resolvedExpander}
}

// Sanitize trims, expands, deduplicates, and prunes nested candidate roots.
func (sanitizer *ProjectRootSanitizer) Sanitize(candidateRoots []string) []string {
	var expander *HomeExpander
	if sanitizer != nil {
		expander = sanitizer.homeExpander
	}
	if expander == nil {
		expander = NewHomeExpander()
	}

	expandedRoots := make([]string, 0, len(candidateRoots))
	for _, candidateRoot := range candidateRoots {
		trimmedCandidate := strings.TrimSpace(candidateRoot)
		if len(trimmedCandidate) == 0 {
			continue
		}

		expandedRoot := expander.Expand(trimmedCandidate)
		if len(expandedRoot) == 0 {
			continue
		}

		expandedRoots = append(expandedRoots, expandedRoot)
	}

	if len(expandedRoots) == 0 {
		return nil
	}

	return pruneNestedRoots(expandedRoots)
}

func pruneNestedRoots(candidateRoots []string) []string {
	type rootDetails struct {
		originalIndex int
		value         string
		comparison    string
	}

	details := make([]rootDetails, 0, len(candidateRoots))
	for index, candidateRoot := range candidateRoots {
		details = append(details, rootDetails{
			originalIndex: index,
			value:         candidateRoot,
			comparison:    comparisonPath(canonicalizePath(candidateRoot)),
		})
	}

	sort.SliceStable(details, func(first int, second int) bool {
		firstLength := len(details[first].comparison)
		secondLength := len(details[second].comparison)
		if firstLength == secondLength {
			return details[first].comparison < details[second].comparison
		}
		return firstLength < secondLength
	})

	selected := make([]rootDetails, 0, len(details))
	for _, candidate := range details {
		nested := false
		for _, existing := range selected {
			if isNestedPath(existing.comparison, candidate.comparison) {
				nested = true
				break
			}
		}
		if !nested {
			selected = append(selected, candidate)
		}
	}

	sort.SliceStable(selected, func(first int, second int) bool {
		return selected[first].originalIndex < selected[second].originalIndex
	})

	prunedRoots := make([]string, 0, len(selected))
	for _, candidate := range selected {
		prunedRoots = append(prunedRoots, candidate.value)
	}

	return prunedRoots
}

func canonicalizePath(path string) string {
	cleanedPath := filepath.Clean(path)
	absolutePath, absoluteError := filepath.Abs(cleanedPath)
	if absoluteError == nil {
		return filepath.Clean(absolutePath)
	}
	return cleanedPath
}

func comparisonPath(path string) string {
	comparison := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		comparison = strings.ToLower(comparison)
	}
	return comparison
}

func isNestedPath(parent string, candidate string) bool {
	if candidate == parent {
		return true
	}

	if len(candidate) <= len(parent) {
		return false
	}

	if !strings.HasPrefix(candidate, parent) {
		return false
	}

	if parent[len(parent)-1] == os.PathSeparator {
		return true
	}

	return candidate[len(parent)] == os.PathSeparator
}

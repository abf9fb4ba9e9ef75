// Package rootutils resolves directory roots for commands from positional
// arguments, persisted configuration, and the working-directory fallback.
package rootutils

import (
	pathutils "github.com/temirov/cpmig/internal/utils/path"
)

const defaultRootConstant = "."

var rootResolutionSanitizer = pathutils.NewProjectRootSanitizer()

// Resolve selects directory roots for a command run. Positional arguments win over
// configured roots; when neither yields a usable root the current directory is used.
func Resolve(arguments []string, configuredRoots []string) []string {
	candidateRoots := arguments
	if len(candidateRoots) == 0 {
		candidateRoots = configuredRoots
	}

	sanitizedRoots := rootResolutionSanitizer.Sanitize(candidateRoots)
	if len(sanitizedRoots) == 0 {
		return []string{defaultRootConstant}
	}

	return sanitizedRoots
}

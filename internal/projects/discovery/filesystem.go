// Package discovery locates project manifest files beneath configured directory roots.
package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultProjectFileExtension is the manifest suffix matched when no override is configured.
const DefaultProjectFileExtension = ".csproj"

// FilesystemProjectFileDiscoverer locates project manifest files on disk.
type FilesystemProjectFileDiscoverer struct{}

// NewFilesystemProjectFileDiscoverer constructs a discoverer backed by filepath.WalkDir.
func NewFilesystemProjectFileDiscoverer() *FilesystemProjectFileDiscoverer {
	return &FilesystemProjectFileDiscoverer{}
}

// DiscoverProjectFiles walks the provided roots and returns files whose name ends with the
// requested extension. The suffix comparison is exact and case-sensitive. Traversal failures,
// including missing roots, propagate to the caller.
func (discoverer *FilesystemProjectFileDiscoverer) DiscoverProjectFiles(roots []string, extension string) ([]string, error) {
	matchedExtension := extension
	if len(strings.TrimSpace(matchedExtension)) == 0 {
		matchedExtension = DefaultProjectFileExtension
	}

	seenProjectFiles := make(map[string]struct{})
	var projectFiles []string

	for _, root := range roots {
		walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, entryError error) error {
			if entryError != nil {
				return entryError
			}

			if directoryEntry.IsDir() {
				return nil
			}

			if !strings.HasSuffix(directoryEntry.Name(), matchedExtension) {
				return nil
			}

			cleanedPath := filepath.Clean(path)
			if _, alreadySeen := seenProjectFiles[cleanedPath]; alreadySeen {
				return nil
			}

			seenProjectFiles[cleanedPath] = struct{}{}
			projectFiles = append(projectFiles, cleanedPath)
			return nil
		})
		if walkError != nil {
			return nil, walkError
		}
	}

	sort.Strings(projectFiles)
	return projectFiles, nil
}

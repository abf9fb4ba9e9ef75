package utils

import (
	"io/fs"
	"os"
	"path/filepath"
)

const temporaryFileNamePatternSuffixConstant = ".cpmig-*"

// WriteFileAtomically writes content to a temporary file in the destination directory and renames it
// into place, so a failed write never leaves the destination file partially written.
func WriteFileAtomically(filePath string, content []byte, fileMode fs.FileMode) error {
	destinationDirectory := filepath.Dir(filePath)

	temporaryFile, createError := os.CreateTemp(destinationDirectory, filepath.Base(filePath)+temporaryFileNamePatternSuffixConstant)
	if createError != nil {
		return createError
	}
	temporaryFilePath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(content); writeError != nil {
		temporaryFile.Close()
		os.Remove(temporaryFilePath)
		return writeError
	}

	if closeError := temporaryFile.Close(); closeError != nil {
		os.Remove(temporaryFilePath)
		return closeError
	}

	if chmodError := os.Chmod(temporaryFilePath, fileMode); chmodError != nil {
		os.Remove(temporaryFilePath)
		return chmodError
	}

	if renameError := os.Rename(temporaryFilePath, filePath); renameError != nil {
		os.Remove(temporaryFilePath)
		return renameError
	}

	return nil
}

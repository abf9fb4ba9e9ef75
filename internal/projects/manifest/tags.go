// Package manifest provides textual scanning over XML-like project manifest
// content. Manifests are treated as plain text, never parsed structurally, so
// formatting, comments, and unrelated elements outside matched tag spans are
// always preserved exactly.
package manifest

import (
	"regexp"
	"strings"
)

const (
	// PackageReferenceOpeningToken starts every package reference opening tag.
	PackageReferenceOpeningToken = "<PackageReference"

	tagTerminatorByteConstant = byte('>')
	doubleQuoteByteConstant   = byte('"')
	singleQuoteByteConstant   = byte('\'')

	versionAttributePatternConstant = `\s+Version="([^"]*)"`
	includeAttributePatternConstant = `\sInclude="([^"]*)"`

	allOccurrencesMatchLimitConstant = -1
	attributeCaptureGroupIndex       = 1
)

var (
	versionAttributePattern = regexp.MustCompile(versionAttributePatternConstant)
	includeAttributePattern = regexp.MustCompile(includeAttributePatternConstant)
)

// TagSpan identifies a half-open [Start, End) region of manifest text covering one opening tag.
type TagSpan struct {
	Start int
	End   int
}

// FindPackageReferenceTags returns the spans of every PackageReference opening tag,
// self-closing or not, in order of appearance. The token must be followed by a
// whitespace character, and the closing '>' is located with a quote-state-aware scan
// so terminator characters inside attribute values do not truncate the span. An
// unterminated tag at the end of the content is not reported.
func FindPackageReferenceTags(content string) []TagSpan {
	var tagSpans []TagSpan
	cursorIndex := 0

	for cursorIndex < len(content) {
		relativeTokenIndex := strings.Index(content[cursorIndex:], PackageReferenceOpeningToken)
		if relativeTokenIndex < 0 {
			break
		}

		tagStartIndex := cursorIndex + relativeTokenIndex
		attributeRegionIndex := tagStartIndex + len(PackageReferenceOpeningToken)

		if attributeRegionIndex >= len(content) || !isMarkupWhitespaceByte(content[attributeRegionIndex]) {
			cursorIndex = attributeRegionIndex
			continue
		}

		tagTerminatorIndex, terminated := locateTagTerminator(content, attributeRegionIndex)
		if !terminated {
			break
		}

		tagSpans = append(tagSpans, TagSpan{Start: tagStartIndex, End: tagTerminatorIndex + 1})
		cursorIndex = tagTerminatorIndex + 1
	}

	return tagSpans
}

// StripVersionAttributes removes every Version attribute from the provided tag text,
// collapsing the preceding whitespace with it, and reports how many were removed.
func StripVersionAttributes(tagText string) (string, int) {
	attributeSpans := versionAttributePattern.FindAllStringIndex(tagText, allOccurrencesMatchLimitConstant)
	if len(attributeSpans) == 0 {
		return tagText, 0
	}
	return versionAttributePattern.ReplaceAllLiteralString(tagText, ""), len(attributeSpans)
}

// IncludeAttribute extracts the Include attribute value from the provided tag text.
func IncludeAttribute(tagText string) (string, bool) {
	match := includeAttributePattern.FindStringSubmatch(tagText)
	if match == nil {
		return "", false
	}
	return match[attributeCaptureGroupIndex], true
}

// VersionAttributes extracts every Version attribute value from the provided tag text.
func VersionAttributes(tagText string) []string {
	matches := versionAttributePattern.FindAllStringSubmatch(tagText, allOccurrencesMatchLimitConstant)
	if len(matches) == 0 {
		return nil
	}

	versionValues := make([]string, 0, len(matches))
	for _, match := range matches {
		versionValues = append(versionValues, match[attributeCaptureGroupIndex])
	}
	return versionValues
}

// locateTagTerminator scans for the closing '>' of an opening tag while tracking quote state.
func locateTagTerminator(content string, startIndex int) (int, bool) {
	var activeQuoteByte byte

	for scanIndex := startIndex; scanIndex < len(content); scanIndex++ {
		currentByte := content[scanIndex]

		switch {
		case activeQuoteByte != 0:
			if currentByte == activeQuoteByte {
				activeQuoteByte = 0
			}
		case currentByte == doubleQuoteByteConstant || currentByte == singleQuoteByteConstant:
			activeQuoteByte = currentByte
		case currentByte == tagTerminatorByteConstant:
			return scanIndex, true
		}
	}

	return 0, false
}

func isMarkupWhitespaceByte(candidateByte byte) bool {
	switch candidateByte {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

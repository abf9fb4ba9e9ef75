package centralize

import (
	"strconv"
	"strings"

	"github.com/temirov/cpmig/internal/projects/manifest"
)

const versionSegmentSeparatorConstant = "."

// PackageVersionCollector accumulates package versions across project manifests.
// When the same package is pinned to different versions, the highest version wins.
type PackageVersionCollector struct {
	packageVersions map[string]string
}

// NewPackageVersionCollector constructs an empty PackageVersionCollector.
func NewPackageVersionCollector() *PackageVersionCollector {
	return &PackageVersionCollector{packageVersions: make(map[string]string)}
}

// CollectFromContent records every Include/Version pair found in package reference
// tags within the provided manifest text and returns the number of recorded pairs.
func (collector *PackageVersionCollector) CollectFromContent(content string) int {
	recordedCount := 0

	for _, tagSpan := range manifest.FindPackageReferenceTags(content) {
		tagText := content[tagSpan.Start:tagSpan.End]

		packageName, includeFound := manifest.IncludeAttribute(tagText)
		if !includeFound || len(strings.TrimSpace(packageName)) == 0 {
			continue
		}

		for _, versionValue := range manifest.VersionAttributes(tagText) {
			trimmedVersion := strings.TrimSpace(versionValue)
			if len(trimmedVersion) == 0 {
				continue
			}
			collector.record(packageName, trimmedVersion)
			recordedCount++
		}
	}

	return recordedCount
}

// Snapshot returns a copy of the collected package versions keyed by package name.
func (collector *PackageVersionCollector) Snapshot() map[string]string {
	snapshot := make(map[string]string, len(collector.packageVersions))
	for packageName, packageVersion := range collector.packageVersions {
		snapshot[packageName] = packageVersion
	}
	return snapshot
}

func (collector *PackageVersionCollector) record(packageName string, packageVersion string) {
	existingVersion, alreadyRecorded := collector.packageVersions[packageName]
	if !alreadyRecorded || CompareVersionStrings(packageVersion, existingVersion) > 0 {
		collector.packageVersions[packageName] = packageVersion
	}
}

// CompareVersionStrings orders version strings by dot-separated segments, numerically
// where both segments are numeric and lexically otherwise. Missing segments compare
// as zero, so "1.2" and "1.2.0" are equal.
func CompareVersionStrings(firstVersion string, secondVersion string) int {
	firstSegments := strings.Split(firstVersion, versionSegmentSeparatorConstant)
	secondSegments := strings.Split(secondVersion, versionSegmentSeparatorConstant)

	segmentCount := len(firstSegments)
	if len(secondSegments) > segmentCount {
		segmentCount = len(secondSegments)
	}

	for segmentIndex := 0; segmentIndex < segmentCount; segmentIndex++ {
		firstSegment := versionSegmentAt(firstSegments, segmentIndex)
		secondSegment := versionSegmentAt(secondSegments, segmentIndex)

		comparison := compareVersionSegments(firstSegment, secondSegment)
		if comparison != 0 {
			return comparison
		}
	}

	return 0
}

func versionSegmentAt(segments []string, segmentIndex int) string {
	if segmentIndex >= len(segments) {
		return "0"
	}
	return segments[segmentIndex]
}

func compareVersionSegments(firstSegment string, secondSegment string) int {
	firstNumber, firstParseError := strconv.Atoi(firstSegment)
	secondNumber, secondParseError := strconv.Atoi(secondSegment)

	if firstParseError == nil && secondParseError == nil {
		switch {
		case firstNumber < secondNumber:
			return -1
		case firstNumber > secondNumber:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(firstSegment, secondSegment)
}

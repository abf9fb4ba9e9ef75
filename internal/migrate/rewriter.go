package migrate

import (
	"strings"

	"github.com/temirov/cpmig/internal/projects/manifest"
)

// PackageReferenceRewriter strips version attributes from package reference tags in project manifest text.
type PackageReferenceRewriter struct{}

// NewPackageReferenceRewriter constructs a PackageReferenceRewriter.
func NewPackageReferenceRewriter() *PackageReferenceRewriter {
	return &PackageReferenceRewriter{}
}

// StripVersionAttributes removes every Version attribute found inside PackageReference opening tags.
// Text outside matched tag spans is preserved verbatim. The returned count reports removed attributes;
// the content changed exactly when the count is positive.
func (rewriter *PackageReferenceRewriter) StripVersionAttributes(content string) (string, int) {
	tagSpans := manifest.FindPackageReferenceTags(content)
	if len(tagSpans) == 0 {
		return content, 0
	}

	var rewrittenContent strings.Builder
	rewrittenContent.Grow(len(content))

	removedAttributeCount := 0
	cursorIndex := 0

	for _, tagSpan := range tagSpans {
		rewrittenContent.WriteString(content[cursorIndex:tagSpan.Start])

		strippedTag, removedInTag := manifest.StripVersionAttributes(content[tagSpan.Start:tagSpan.End])
		rewrittenContent.WriteString(strippedTag)
		removedAttributeCount += removedInTag

		cursorIndex = tagSpan.End
	}

	rewrittenContent.WriteString(content[cursorIndex:])

	if removedAttributeCount == 0 {
		return content, 0
	}

	return rewrittenContent.String(), removedAttributeCount
}

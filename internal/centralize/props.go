package centralize

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultPropsFileName is the conventional central package version file name.
	DefaultPropsFileName = "Directory.Packages.props"

	propsFileOpeningConstant = "<Project>\n  <PropertyGroup>\n    <ManagePackageVersionsCentrally>true</ManagePackageVersionsCentrally>\n  </PropertyGroup>\n  <ItemGroup>\n"
	propsFileClosingConstant = "  </ItemGroup>\n</Project>\n"
	propsEntryTemplateConst  = "    <PackageVersion Include=\"%s\" Version=\"%s\" />\n"
)

// BuildPropsContent renders central package version properties content for the provided
// package versions, with entries sorted by package name for deterministic output.
func BuildPropsContent(packageVersions map[string]string) string {
	packageNames := make([]string, 0, len(packageVersions))
	for packageName := range packageVersions {
		packageNames = append(packageNames, packageName)
	}
	sort.Strings(packageNames)

	var propsContent strings.Builder
	propsContent.WriteString(propsFileOpeningConstant)
	for _, packageName := range packageNames {
		fmt.Fprintf(&propsContent, propsEntryTemplateConst, packageName, packageVersions[packageName])
	}
	propsContent.WriteString(propsFileClosingConstant)

	return propsContent.String()
}

package centralize

import (
	"strings"

	"github.com/temirov/cpmig/internal/projects/discovery"
	pathutils "github.com/temirov/cpmig/internal/utils/path"
)

var centralizeConfigurationProjectRootSanitizer = pathutils.NewProjectRootSanitizer()

const (
	collectRootsConfigurationKeySuffixConstant     = ".roots"
	collectExtensionConfigurationKeySuffixConstant = ".extension"
	collectOutputConfigurationKeySuffixConstant    = ".output"
	collectDebugConfigurationKeySuffixConstant     = ".debug"
)

// CommandConfiguration captures persisted configuration for version collection.
type CommandConfiguration struct {
	EnableDebugLogging   bool     `mapstructure:"debug"`
	ProjectRoots         []string `mapstructure:"roots"`
	ProjectFileExtension string   `mapstructure:"extension"`
	OutputPath           string   `mapstructure:"output"`
}

// DefaultCommandConfiguration returns baseline configuration values for version collection.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		EnableDebugLogging:   false,
		ProjectRoots:         nil,
		ProjectFileExtension: discovery.DefaultProjectFileExtension,
		OutputPath:           "",
	}
}

// DefaultConfigurationValues exposes configuration defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + collectRootsConfigurationKeySuffixConstant:     defaults.ProjectRoots,
		configurationKeyPrefix + collectExtensionConfigurationKeySuffixConstant: defaults.ProjectFileExtension,
		configurationKeyPrefix + collectOutputConfigurationKeySuffixConstant:    defaults.OutputPath,
		configurationKeyPrefix + collectDebugConfigurationKeySuffixConstant:     defaults.EnableDebugLogging,
	}
}

// Sanitize trims configured values and removes empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ProjectRoots = centralizeConfigurationProjectRootSanitizer.Sanitize(configuration.ProjectRoots)
	sanitized.ProjectFileExtension = strings.TrimSpace(configuration.ProjectFileExtension)
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	return sanitized
}

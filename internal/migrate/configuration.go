package migrate

import (
	"strings"

	"github.com/temirov/cpmig/internal/projects/discovery"
	pathutils "github.com/temirov/cpmig/internal/utils/path"
)

var migrateConfigurationProjectRootSanitizer = pathutils.NewProjectRootSanitizer()

const (
	rootsConfigurationKeySuffixConstant           = ".roots"
	extensionConfigurationKeySuffixConstant       = ".extension"
	continueOnErrorConfigurationKeySuffixConstant = ".continue_on_error"
	debugConfigurationKeySuffixConstant           = ".debug"
)

// CommandConfiguration captures persisted configuration for version removal.
type CommandConfiguration struct {
	EnableDebugLogging   bool     `mapstructure:"debug"`
	ProjectRoots         []string `mapstructure:"roots"`
	ProjectFileExtension string   `mapstructure:"extension"`
	ContinueOnError      bool     `mapstructure:"continue_on_error"`
}

// DefaultCommandConfiguration returns baseline configuration values for version removal.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		EnableDebugLogging:   false,
		ProjectRoots:         nil,
		ProjectFileExtension: discovery.DefaultProjectFileExtension,
		ContinueOnError:      false,
	}
}

// DefaultConfigurationValues exposes configuration defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + rootsConfigurationKeySuffixConstant:           defaults.ProjectRoots,
		configurationKeyPrefix + extensionConfigurationKeySuffixConstant:       defaults.ProjectFileExtension,
		configurationKeyPrefix + continueOnErrorConfigurationKeySuffixConstant: defaults.ContinueOnError,
		configurationKeyPrefix + debugConfigurationKeySuffixConstant:           defaults.EnableDebugLogging,
	}
}

// Sanitize trims configured values and removes empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.ProjectRoots = migrateConfigurationProjectRootSanitizer.Sanitize(configuration.ProjectRoots)
	sanitized.ProjectFileExtension = strings.TrimSpace(configuration.ProjectFileExtension)
	return sanitized
}

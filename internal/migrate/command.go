package migrate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/cpmig/internal/projects/discovery"
	"github.com/temirov/cpmig/internal/utils"
	rootutils "github.com/temirov/cpmig/internal/utils/roots"
)

const (
	commandUseConstant                        = "remove-versions [roots...]"
	commandShortDescriptionConstant           = "Remove version attributes from package references"
	commandLongDescriptionConstant            = "remove-versions walks the provided directory roots, locates project manifest files, and strips Version attributes from PackageReference declarations so dependency versions can move to centralized package management."
	extensionFlagNameConstant                 = "extension"
	extensionFlagUsageConstant                = "Project manifest file suffix to match"
	continueOnErrorFlagNameConstant           = "continue-on-error"
	continueOnErrorFlagUsageConstant          = "Collect per-file failures and report them after all files are attempted"
	removalExecutionErrorTemplateConstant     = "version removal failed: %w"
	removalCompletedMessageConstant           = "Version removal command completed"
	removalFailedMessageConstant              = "Version removal command failed"
	commandRootsFieldNameConstant             = "roots"
	commandUpdatedFilesFieldNameConstant      = "updated_files"
	commandInspectedFilesFieldNameConstant    = "inspected_files"
	commandRemovedAttributesFieldNameConstant = "removed_version_attributes"
)

// MigrationExecutor executes a version removal run.
type MigrationExecutor interface {
	Execute(executionContext context.Context, options MigrationOptions) (MigrationResult, error)
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ServiceProvider constructs a migration executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (MigrationExecutor, error)

type commandOptions struct {
	debugLoggingEnabled bool
	projectRoots        []string
	extension           string
	continueOnError     bool
}

// CommandBuilder assembles the remove-versions Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	Discoverer            ProjectFileDiscoverer
	ServiceProvider       ServiceProvider
	NoticeWriter          io.Writer
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the remove-versions command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.runRemoveVersions,
	}

	command.Flags().String(extensionFlagNameConstant, discovery.DefaultProjectFileExtension, extensionFlagUsageConstant)
	command.Flags().Bool(continueOnErrorFlagNameConstant, false, continueOnErrorFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runRemoveVersions(command *cobra.Command, arguments []string) error {
	options := builder.parseOptions(command, arguments)

	logger := builder.resolveLogger(options.debugLoggingEnabled)

	noticeWriter := builder.NoticeWriter
	if noticeWriter == nil {
		noticeWriter = utils.NewFlushingWriter(command.OutOrStdout())
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:       logger,
		Discoverer:   builder.resolveDiscoverer(),
		NoticeWriter: noticeWriter,
	})
	if serviceError != nil {
		return serviceError
	}

	migrationOptions := MigrationOptions{
		ProjectRoots:         options.projectRoots,
		ProjectFileExtension: options.extension,
		ContinueOnError:      options.continueOnError,
	}

	result, executionError := service.Execute(command.Context(), migrationOptions)
	if executionError != nil {
		logger.Error(removalFailedMessageConstant,
			zap.Strings(commandRootsFieldNameConstant, options.projectRoots),
			zap.Error(executionError),
		)
		return fmt.Errorf(removalExecutionErrorTemplateConstant, executionError)
	}

	logger.Info(removalCompletedMessageConstant,
		zap.Strings(commandRootsFieldNameConstant, options.projectRoots),
		zap.Strings(commandUpdatedFilesFieldNameConstant, result.UpdatedFiles),
		zap.Int(commandInspectedFilesFieldNameConstant, result.InspectedFileCount),
		zap.Int(commandRemovedAttributesFieldNameConstant, result.RemovedAttributeCount),
	)

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) commandOptions {
	configuration := builder.resolveConfiguration()

	debugEnabled := configuration.EnableDebugLogging
	if command != nil {
		contextAccessor := utils.NewCommandContextAccessor()
		if logLevel, available := contextAccessor.LogLevel(command.Context()); available {
			if strings.EqualFold(logLevel, string(utils.LogLevelDebug)) {
				debugEnabled = true
			}
		}
	}

	projectRoots := rootutils.Resolve(arguments, configuration.ProjectRoots)

	extension := configuration.ProjectFileExtension
	continueOnError := configuration.ContinueOnError

	if command != nil {
		if command.Flags().Changed(extensionFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(extensionFlagNameConstant)
			extension = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(continueOnErrorFlagNameConstant) {
			flagValue, _ := command.Flags().GetBool(continueOnErrorFlagNameConstant)
			continueOnError = flagValue
		}
	}

	if len(extension) == 0 {
		extension = discovery.DefaultProjectFileExtension
	}

	return commandOptions{
		debugLoggingEnabled: debugEnabled,
		projectRoots:        projectRoots,
		extension:           extension,
		continueOnError:     continueOnError,
	}
}

func (builder *CommandBuilder) resolveLogger(enableDebug bool) *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if enableDebug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.DebugLevel))
	}
	return logger
}

func (builder *CommandBuilder) resolveDiscoverer() ProjectFileDiscoverer {
	if builder.Discoverer != nil {
		return builder.Discoverer
	}
	return discovery.NewFilesystemProjectFileDiscoverer()
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (MigrationExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

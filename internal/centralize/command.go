package centralize

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
	collectCommandUseConstant              = "collect-versions [roots...]"
	collectCommandShortDescriptionConstant = "Collect package versions into a central versions file"
	collectCommandLongDescriptionConstant  = "collect-versions walks the provided directory roots, gathers Version attributes from PackageReference declarations, and writes a Directory.Packages.props file listing the highest version seen for each package."
	collectExtensionFlagNameConstant       = "extension"
	collectExtensionFlagUsageConstant      = "Project manifest file suffix to match"
	outputFlagNameConstant                 = "output"
	outputFlagUsageConstant                = "Path of the package versions file to write"
	collectExecutionErrorTemplateConstant  = "version collection failed: %w"
	collectCompletedMessageConstant        = "Version collection command completed"
	collectFailedMessageConstant           = "Version collection command failed"
	collectCmdRootsFieldNameConstant       = "roots"
	collectCmdOutputFieldNameConstant      = "output"
	collectCmdPackagesFieldNameConstant    = "packages"
)

// CollectionExecutor executes a version collection run.
type CollectionExecutor interface {
	Execute(executionContext context.Context, options CollectionOptions) (CollectionResult, error)
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ServiceProvider constructs a collection executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (CollectionExecutor, error)

type collectCommandOptions struct {
	debugLoggingEnabled bool
	projectRoots        []string
	extension           string
	outputPath          string
}

// CommandBuilder assembles the collect-versions Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	Discoverer            ProjectFileDiscoverer
	ServiceProvider       ServiceProvider
	NoticeWriter          io.Writer
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the collect-versions command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           collectCommandUseConstant,
		Short:         collectCommandShortDescriptionConstant,
		Long:          collectCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.runCollectVersions,
	}

	command.Flags().String(collectExtensionFlagNameConstant, discovery.DefaultProjectFileExtension, collectExtensionFlagUsageConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runCollectVersions(command *cobra.Command, arguments []string) error {
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

	collectionOptions := CollectionOptions{
		ProjectRoots:         options.projectRoots,
		ProjectFileExtension: options.extension,
		OutputPath:           options.outputPath,
	}

	result, executionError := service.Execute(command.Context(), collectionOptions)
	if executionError != nil {
		logger.Error(collectFailedMessageConstant,
			zap.Strings(collectCmdRootsFieldNameConstant, options.projectRoots),
			zap.Error(executionError),
		)
		return fmt.Errorf(collectExecutionErrorTemplateConstant, executionError)
	}

	logger.Info(collectCompletedMessageConstant,
		zap.Strings(collectCmdRootsFieldNameConstant, options.projectRoots),
		zap.String(collectCmdOutputFieldNameConstant, result.OutputPath),
		zap.Int(collectCmdPackagesFieldNameConstant, result.PackageCount),
	)

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) collectCommandOptions {
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
	outputPath := configuration.OutputPath

	if command != nil {
		if command.Flags().Changed(collectExtensionFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(collectExtensionFlagNameConstant)
			extension = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(outputFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(outputFlagNameConstant)
			outputPath = strings.TrimSpace(flagValue)
		}
	}

	if len(extension) == 0 {
		extension = discovery.DefaultProjectFileExtension
	}

	return collectCommandOptions{
		debugLoggingEnabled: debugEnabled,
		projectRoots:        projectRoots,
		extension:           extension,
		outputPath:          outputPath,
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

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (CollectionExecutor, error) {
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

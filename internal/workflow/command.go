package workflow

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/cpmig/internal/centralize"
	"github.com/temirov/cpmig/internal/migrate"
	"github.com/temirov/cpmig/internal/projects/discovery"
	"github.com/temirov/cpmig/internal/utils"
)

const (
	workflowCommandUseConstant              = "workflow"
	workflowCommandShortDescriptionConstant = "Run ordered migration steps from a plan file"
	workflowCommandLongDescriptionConstant  = "workflow loads a YAML or JSON plan describing ordered collect-versions and remove-versions steps and executes them sequentially, stopping at the first failure."
	planFileFlagNameConstant                = "file"
	planFileFlagUsageConstant               = "Path to the workflow plan file (YAML or JSON)"
	workflowFailedMessageConstant           = "Workflow command failed"
	planFileFieldNameConstant               = "plan_file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the workflow Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	NoticeWriter          io.Writer
	RemovalExecutor       VersionRemovalExecutor
	CollectionExecutor    VersionCollectionExecutor
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the workflow command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           workflowCommandUseConstant,
		Short:         workflowCommandShortDescriptionConstant,
		Long:          workflowCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runWorkflow,
	}

	command.Flags().String(planFileFlagNameConstant, "", planFileFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runWorkflow(command *cobra.Command, arguments []string) error {
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

	logger := builder.resolveLogger(debugEnabled)

	planFilePath := configuration.PlanFilePath
	if command != nil && command.Flags().Changed(planFileFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(planFileFlagNameConstant)
		planFilePath = strings.TrimSpace(flagValue)
	}

	planConfiguration, loadError := LoadConfiguration(planFilePath)
	if loadError != nil {
		logger.Error(workflowFailedMessageConstant,
			zap.String(planFileFieldNameConstant, planFilePath),
			zap.Error(loadError),
		)
		return loadError
	}

	noticeWriter := builder.NoticeWriter
	if noticeWriter == nil {
		noticeWriter = utils.NewFlushingWriter(command.OutOrStdout())
	}

	removalExecutor, collectionExecutor, executorError := builder.resolveExecutors(logger, noticeWriter)
	if executorError != nil {
		return executorError
	}

	runner, runnerError := NewRunner(RunnerDependencies{
		Logger:             logger,
		RemovalExecutor:    removalExecutor,
		CollectionExecutor: collectionExecutor,
	})
	if runnerError != nil {
		return runnerError
	}

	runError := runner.Run(command.Context(), planConfiguration)
	if runError != nil {
		logger.Error(workflowFailedMessageConstant,
			zap.String(planFileFieldNameConstant, planFilePath),
			zap.Error(runError),
		)
		return runError
	}

	return nil
}

func (builder *CommandBuilder) resolveExecutors(logger *zap.Logger, noticeWriter io.Writer) (VersionRemovalExecutor, VersionCollectionExecutor, error) {
	removalExecutor := builder.RemovalExecutor
	if removalExecutor == nil {
		service, serviceError := migrate.NewService(migrate.ServiceDependencies{
			Logger:       logger,
			Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
			NoticeWriter: noticeWriter,
		})
		if serviceError != nil {
			return nil, nil, serviceError
		}
		removalExecutor = service
	}

	collectionExecutor := builder.CollectionExecutor
	if collectionExecutor == nil {
		service, serviceError := centralize.NewService(centralize.ServiceDependencies{
			Logger:       logger,
			Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
			NoticeWriter: noticeWriter,
		})
		if serviceError != nil {
			return nil, nil, serviceError
		}
		collectionExecutor = service
	}

	return removalExecutor, collectionExecutor, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
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

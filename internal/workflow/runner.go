package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/cpmig/internal/centralize"
	"github.com/temirov/cpmig/internal/migrate"
	rootutils "github.com/temirov/cpmig/internal/utils/roots"
)

const (
	runnerExecutorsMissingMessageConstant = "workflow runner requires removal and collection executors"
	stepFailureTemplateConstant           = "workflow step %d (%s) failed: %w"
	stepCompletedLogMessageConstant       = "Workflow step completed"
	workflowCompletedLogMessageConstant   = "Workflow completed"
	stepIndexFieldNameConstant            = "step"
	stepOperationFieldNameConstant        = "operation"
	stepCountFieldNameConstant            = "steps"
)

var errRunnerExecutorsMissing = errors.New(runnerExecutorsMissingMessageConstant)

// VersionRemovalExecutor executes a version removal run.
type VersionRemovalExecutor interface {
	Execute(executionContext context.Context, options migrate.MigrationOptions) (migrate.MigrationResult, error)
}

// VersionCollectionExecutor executes a version collection run.
type VersionCollectionExecutor interface {
	Execute(executionContext context.Context, options centralize.CollectionOptions) (centralize.CollectionResult, error)
}

// RunnerDependencies describes collaborators required by the workflow runner.
type RunnerDependencies struct {
	Logger             *zap.Logger
	RemovalExecutor    VersionRemovalExecutor
	CollectionExecutor VersionCollectionExecutor
}

// Runner executes workflow plan steps sequentially, aborting on the first failure.
type Runner struct {
	logger             *zap.Logger
	removalExecutor    VersionRemovalExecutor
	collectionExecutor VersionCollectionExecutor
}

// NewRunner constructs a Runner with the provided dependencies.
func NewRunner(dependencies RunnerDependencies) (*Runner, error) {
	if dependencies.RemovalExecutor == nil || dependencies.CollectionExecutor == nil {
		return nil, errRunnerExecutorsMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		logger:             logger,
		removalExecutor:    dependencies.RemovalExecutor,
		collectionExecutor: dependencies.CollectionExecutor,
	}, nil
}

// Run executes every step of the provided plan in order.
func (runner *Runner) Run(executionContext context.Context, configuration Configuration) error {
	for stepIndex, step := range configuration.Steps {
		stepError := runner.runStep(executionContext, step)
		if stepError != nil {
			return fmt.Errorf(stepFailureTemplateConstant, stepIndex+1, step.Operation, stepError)
		}

		runner.logger.Info(stepCompletedLogMessageConstant,
			zap.Int(stepIndexFieldNameConstant, stepIndex+1),
			zap.String(stepOperationFieldNameConstant, string(step.Operation)),
		)
	}

	runner.logger.Info(workflowCompletedLogMessageConstant,
		zap.Int(stepCountFieldNameConstant, len(configuration.Steps)),
	)

	return nil
}

func (runner *Runner) runStep(executionContext context.Context, step StepConfiguration) error {
	stepRoots := rootutils.Resolve(nil, step.Options.Roots)

	switch step.Operation {
	case OperationTypeRemoveVersions:
		options := migrate.MigrationOptions{
			ProjectRoots:         stepRoots,
			ProjectFileExtension: step.Options.Extension,
			ContinueOnError:      step.Options.ContinueOnError,
		}
		_, executionError := runner.removalExecutor.Execute(executionContext, options)
		return executionError
	case OperationTypeCollectVersions:
		options := centralize.CollectionOptions{
			ProjectRoots:         stepRoots,
			ProjectFileExtension: step.Options.Extension,
			OutputPath:           step.Options.Output,
		}
		_, executionError := runner.collectionExecutor.Execute(executionContext, options)
		return executionError
	default:
		return fmt.Errorf(planUnknownOperationTemplateConstant, step.Operation)
	}
}

package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	planLoadErrorTemplateConstant        = "failed to load workflow plan: %w"
	planParseErrorTemplateConstant       = "failed to parse workflow plan: %w"
	planPathRequiredMessageConstant      = "workflow plan path must be provided"
	planEmptyStepsMessageConstant        = "workflow plan must define at least one step"
	planOperationMissingMessageConstant  = "workflow step missing operation name"
	planUnknownOperationTemplateConstant = "unknown workflow operation: %s"
	planStepPositionTemplateConstant     = "step %d: %s"
	workflowFileConfigurationKeySuffix   = ".file"
	workflowDebugConfigurationKeySuffix  = ".debug"
	workflowDefaultPlanFilePathConstant  = ""
	workflowDefaultDebugLoggingConstant  = false
)

// OperationType identifies supported workflow operations.
type OperationType string

// Supported workflow operations.
const (
	OperationTypeCollectVersions OperationType = OperationType("collect-versions")
	OperationTypeRemoveVersions  OperationType = OperationType("remove-versions")
)

// Configuration describes the ordered workflow steps loaded from YAML or JSON.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration captures one workflow operation and its options.
type StepConfiguration struct {
	Operation OperationType `yaml:"operation" json:"operation"`
	Options   StepOptions   `yaml:"with" json:"with"`
}

// StepOptions carries per-step settings shared by the supported operations.
type StepOptions struct {
	Roots           []string `yaml:"roots" json:"roots"`
	Extension       string   `yaml:"extension" json:"extension"`
	Output          string   `yaml:"output" json:"output"`
	ContinueOnError bool     `yaml:"continue_on_error" json:"continue_on_error"`
}

// CommandConfiguration captures persisted configuration for the workflow command.
type CommandConfiguration struct {
	PlanFilePath       string `mapstructure:"file"`
	EnableDebugLogging bool   `mapstructure:"debug"`
}

// DefaultCommandConfiguration returns baseline configuration values for the workflow command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PlanFilePath:       workflowDefaultPlanFilePathConstant,
		EnableDebugLogging: workflowDefaultDebugLoggingConstant,
	}
}

// DefaultConfigurationValues exposes configuration defaults keyed beneath the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + workflowFileConfigurationKeySuffix:  defaults.PlanFilePath,
		configurationKeyPrefix + workflowDebugConfigurationKeySuffix: defaults.EnableDebugLogging,
	}
}

// Sanitize trims configured values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.PlanFilePath = strings.TrimSpace(configuration.PlanFilePath)
	return sanitized
}

// LoadConfiguration reads and validates a workflow plan from the provided path.
func LoadConfiguration(planFilePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(planFilePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(planPathRequiredMessageConstant)
	}

	planContent, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(planLoadErrorTemplateConstant, readError)
	}

	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(planContent, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(planParseErrorTemplateConstant, unmarshalError)
	}

	if validationError := configuration.Validate(); validationError != nil {
		return Configuration{}, validationError
	}

	return configuration, nil
}

// Validate ensures the plan defines at least one step and every step names a known operation.
func (configuration Configuration) Validate() error {
	if len(configuration.Steps) == 0 {
		return errors.New(planEmptyStepsMessageConstant)
	}

	for stepIndex, step := range configuration.Steps {
		operationName := strings.TrimSpace(string(step.Operation))
		if len(operationName) == 0 {
			return fmt.Errorf(planStepPositionTemplateConstant, stepIndex+1, planOperationMissingMessageConstant)
		}

		switch OperationType(operationName) {
		case OperationTypeCollectVersions, OperationTypeRemoveVersions:
		default:
			return fmt.Errorf(planStepPositionTemplateConstant, stepIndex+1, fmt.Sprintf(planUnknownOperationTemplateConstant, operationName))
		}
	}

	return nil
}

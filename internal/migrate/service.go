package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cpmig/internal/projects/discovery"
	"github.com/temirov/cpmig/internal/utils"
)

const (
	projectDiscovererMissingMessageConstant = "project file discoverer not configured"
	projectDiscoveryErrorTemplateConstant   = "project discovery failed: %w"
	readProjectFileErrorTemplateConstant    = "unable to read project file %s: %w"
	statProjectFileErrorTemplateConstant    = "unable to stat project file %s: %w"
	writeProjectFileErrorTemplateConstant   = "unable to write project file %s: %w"
	updateNoticeTemplateConstant            = "Updating %s\n"
	rewriteLogMessageConstant               = "Rewriting project file"
	skipRewriteLogMessageConstant           = "No version attributes to remove"
	migrationCompletedLogMessageConstant    = "Version removal completed"
	projectFileFieldNameConstant            = "project_file"
	projectRootsFieldNameConstant           = "roots"
	updatedFilesFieldNameConstant           = "updated_files"
	inspectedFileCountFieldNameConstant     = "inspected_files"
	removedAttributeCountFieldNameConstant  = "removed_version_attributes"
	removedAttributesFieldNameConstant      = "removed_attributes"
)

var errProjectDiscovererMissing = errors.New(projectDiscovererMissingMessageConstant)

// ProjectFileDiscoverer locates project manifest files beneath provided roots.
type ProjectFileDiscoverer interface {
	DiscoverProjectFiles(roots []string, extension string) ([]string, error)
}

// ServiceDependencies describes collaborators required by the migration service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Discoverer   ProjectFileDiscoverer
	NoticeWriter io.Writer
}

// MigrationOptions configures a version removal run.
type MigrationOptions struct {
	ProjectRoots         []string
	ProjectFileExtension string
	ContinueOnError      bool
}

// MigrationResult captures the observable outcomes of a version removal run.
type MigrationResult struct {
	UpdatedFiles          []string
	InspectedFileCount    int
	RemovedAttributeCount int
}

// Service walks project trees and strips version attributes from package references.
type Service struct {
	logger       *zap.Logger
	discoverer   ProjectFileDiscoverer
	rewriter     *PackageReferenceRewriter
	noticeWriter io.Writer
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, errProjectDiscovererMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	noticeWriter := dependencies.NoticeWriter
	if noticeWriter == nil {
		noticeWriter = os.Stdout
	}

	return &Service{
		logger:       logger,
		discoverer:   dependencies.Discoverer,
		rewriter:     NewPackageReferenceRewriter(),
		noticeWriter: noticeWriter,
	}, nil
}

// Execute discovers matching project files and rewrites each one whose content changes.
// Failures abort the run unless ContinueOnError is set, in which case every per-file
// failure is collected and reported as a joined error after all files are attempted.
func (service *Service) Execute(executionContext context.Context, options MigrationOptions) (MigrationResult, error) {
	result := MigrationResult{UpdatedFiles: []string{}}

	extension := strings.TrimSpace(options.ProjectFileExtension)
	if len(extension) == 0 {
		extension = discovery.DefaultProjectFileExtension
	}

	projectFiles, discoveryError := service.discoverer.DiscoverProjectFiles(options.ProjectRoots, extension)
	if discoveryError != nil {
		return result, fmt.Errorf(projectDiscoveryErrorTemplateConstant, discoveryError)
	}

	var fileFailures []error

	for _, projectFilePath := range projectFiles {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		result.InspectedFileCount++

		removedCount, processingError := service.processProjectFile(projectFilePath)
		if processingError != nil {
			if !options.ContinueOnError {
				return result, processingError
			}
			fileFailures = append(fileFailures, processingError)
			continue
		}

		if removedCount > 0 {
			result.UpdatedFiles = append(result.UpdatedFiles, projectFilePath)
			result.RemovedAttributeCount += removedCount
		}
	}

	service.logger.Info(migrationCompletedLogMessageConstant,
		zap.Strings(projectRootsFieldNameConstant, options.ProjectRoots),
		zap.Strings(updatedFilesFieldNameConstant, result.UpdatedFiles),
		zap.Int(inspectedFileCountFieldNameConstant, result.InspectedFileCount),
		zap.Int(removedAttributeCountFieldNameConstant, result.RemovedAttributeCount),
	)

	if len(fileFailures) > 0 {
		return result, errors.Join(fileFailures...)
	}

	return result, nil
}

func (service *Service) processProjectFile(projectFilePath string) (int, error) {
	fileContent, readError := os.ReadFile(projectFilePath)
	if readError != nil {
		return 0, fmt.Errorf(readProjectFileErrorTemplateConstant, projectFilePath, readError)
	}

	rewrittenContent, removedCount := service.rewriter.StripVersionAttributes(string(fileContent))
	if removedCount == 0 || rewrittenContent == string(fileContent) {
		service.logger.Debug(skipRewriteLogMessageConstant, zap.String(projectFileFieldNameConstant, projectFilePath))
		return 0, nil
	}

	fileInfo, statError := os.Stat(projectFilePath)
	if statError != nil {
		return 0, fmt.Errorf(statProjectFileErrorTemplateConstant, projectFilePath, statError)
	}

	writeError := utils.WriteFileAtomically(projectFilePath, []byte(rewrittenContent), fileInfo.Mode().Perm())
	if writeError != nil {
		return 0, fmt.Errorf(writeProjectFileErrorTemplateConstant, projectFilePath, writeError)
	}

	fmt.Fprintf(service.noticeWriter, updateNoticeTemplateConstant, projectFilePath)

	service.logger.Info(rewriteLogMessageConstant,
		zap.String(projectFileFieldNameConstant, projectFilePath),
		zap.Int(removedAttributesFieldNameConstant, removedCount),
	)

	return removedCount, nil
}

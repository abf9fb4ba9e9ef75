package centralize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/cpmig/internal/projects/discovery"
	"github.com/temirov/cpmig/internal/utils"
)

const (
	collectDiscovererMissingMessageConstant = "project file discoverer not configured"
	collectDiscoveryErrorTemplateConstant   = "project discovery failed: %w"
	collectReadErrorTemplateConstant        = "unable to read project file %s: %w"
	collectWriteErrorTemplateConstant       = "unable to write package versions file %s: %w"
	writeNoticeTemplateConstant             = "Writing %s\n"
	collectionCompletedLogMessageConstant   = "Version collection completed"
	collectProjectFileFieldNameConstant     = "project_file"
	collectRootsFieldNameConstant           = "roots"
	collectOutputFieldNameConstant          = "output"
	collectPackageCountFieldNameConstant    = "packages"
	collectProjectCountFieldNameConstant    = "inspected_files"
	referencesRecordedLogMessageConstant    = "Recorded package references"
	referencesRecordedFieldNameConstant     = "references"
	propsFileModeConstant                   = 0o644
)

var errCollectDiscovererMissing = errors.New(collectDiscovererMissingMessageConstant)

// ProjectFileDiscoverer locates project manifest files beneath provided roots.
type ProjectFileDiscoverer interface {
	DiscoverProjectFiles(roots []string, extension string) ([]string, error)
}

// ServiceDependencies describes collaborators required by the collection service.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Discoverer   ProjectFileDiscoverer
	NoticeWriter io.Writer
}

// CollectionOptions configures a version collection run.
type CollectionOptions struct {
	ProjectRoots         []string
	ProjectFileExtension string
	OutputPath           string
}

// CollectionResult captures the observable outcomes of a version collection run.
type CollectionResult struct {
	OutputPath         string
	PackageCount       int
	InspectedFileCount int
}

// Service gathers package reference versions and writes the central package versions file.
type Service struct {
	logger       *zap.Logger
	discoverer   ProjectFileDiscoverer
	noticeWriter io.Writer
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Discoverer == nil {
		return nil, errCollectDiscovererMissing
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
		noticeWriter: noticeWriter,
	}, nil
}

// Execute discovers matching project files, collects their package reference versions,
// and writes the aggregated versions file. Project files are never modified.
func (service *Service) Execute(executionContext context.Context, options CollectionOptions) (CollectionResult, error) {
	result := CollectionResult{}

	extension := strings.TrimSpace(options.ProjectFileExtension)
	if len(extension) == 0 {
		extension = discovery.DefaultProjectFileExtension
	}

	projectFiles, discoveryError := service.discoverer.DiscoverProjectFiles(options.ProjectRoots, extension)
	if discoveryError != nil {
		return result, fmt.Errorf(collectDiscoveryErrorTemplateConstant, discoveryError)
	}

	collector := NewPackageVersionCollector()

	for _, projectFilePath := range projectFiles {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}

		fileContent, readError := os.ReadFile(projectFilePath)
		if readError != nil {
			return result, fmt.Errorf(collectReadErrorTemplateConstant, projectFilePath, readError)
		}

		result.InspectedFileCount++

		recordedCount := collector.CollectFromContent(string(fileContent))
		if recordedCount > 0 {
			service.logger.Debug(referencesRecordedLogMessageConstant,
				zap.String(collectProjectFileFieldNameConstant, projectFilePath),
				zap.Int(referencesRecordedFieldNameConstant, recordedCount),
			)
		}
	}

	packageVersions := collector.Snapshot()
	result.PackageCount = len(packageVersions)
	result.OutputPath = resolveOutputPath(options)

	propsContent := BuildPropsContent(packageVersions)
	writeError := utils.WriteFileAtomically(result.OutputPath, []byte(propsContent), propsFileModeConstant)
	if writeError != nil {
		return result, fmt.Errorf(collectWriteErrorTemplateConstant, result.OutputPath, writeError)
	}

	fmt.Fprintf(service.noticeWriter, writeNoticeTemplateConstant, result.OutputPath)

	service.logger.Info(collectionCompletedLogMessageConstant,
		zap.Strings(collectRootsFieldNameConstant, options.ProjectRoots),
		zap.String(collectOutputFieldNameConstant, result.OutputPath),
		zap.Int(collectPackageCountFieldNameConstant, result.PackageCount),
		zap.Int(collectProjectCountFieldNameConstant, result.InspectedFileCount),
	)

	return result, nil
}

func resolveOutputPath(options CollectionOptions) string {
	trimmedOutputPath := strings.TrimSpace(options.OutputPath)
	if len(trimmedOutputPath) > 0 {
		return trimmedOutputPath
	}

	if len(options.ProjectRoots) > 0 {
		return filepath.Join(options.ProjectRoots[0], DefaultPropsFileName)
	}

	return DefaultPropsFileName
}

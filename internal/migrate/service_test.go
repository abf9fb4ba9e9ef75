package migrate_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/cpmig/internal/migrate"
	"github.com/temirov/cpmig/internal/projects/discovery"
)

const (
	serviceSubtestNameTemplateConstant  = "%d_%s"
	projectFileWithVersionsConstant     = "<Project>\n  <ItemGroup>\n    <PackageReference Include=\"Newtonsoft.Json\" Version=\"13.0.1\" />\n    <PackageReference Include=\"Serilog\" Version=\"2.12.0\" />\n  </ItemGroup>\n</Project>\n"
	projectFileWithoutVersionsConstant  = "<Project>\n  <ItemGroup>\n    <PackageReference Include=\"Newtonsoft.Json\" />\n  </ItemGroup>\n</Project>\n"
	expectedStrippedProjectFileConstant = "<Project>\n  <ItemGroup>\n    <PackageReference Include=\"Newtonsoft.Json\" />\n    <PackageReference Include=\"Serilog\" />\n  </ItemGroup>\n</Project>\n"
	updateNoticeFormatConstant          = "Updating %s\n"
	pinnedProjectFileNameConstant       = "pinned.csproj"
	centralizedProjectFileNameConstant  = "centralized.csproj"
	unrelatedTextFileNameConstant       = "notes.txt"
	nestedProjectDirectoryNameConstant  = "src"
	missingProjectFilePathConstant      = "missing/absent.csproj"
	projectFilePermissionsConstant      = 0o640
)

type stubProjectFileDiscoverer struct {
	projectFiles   []string
	discoveryError error
}

func (discoverer *stubProjectFileDiscoverer) DiscoverProjectFiles(roots []string, extension string) ([]string, error) {
	if discoverer.discoveryError != nil {
		return nil, discoverer.discoveryError
	}
	return discoverer.projectFiles, nil
}

func TestServiceExecuteRewritesMatchingProjectFiles(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	nestedDirectory := filepath.Join(rootDirectory, nestedProjectDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(nestedDirectory, 0o755))

	pinnedProjectPath := filepath.Join(nestedDirectory, pinnedProjectFileNameConstant)
	centralizedProjectPath := filepath.Join(rootDirectory, centralizedProjectFileNameConstant)
	unrelatedFilePath := filepath.Join(rootDirectory, unrelatedTextFileNameConstant)

	require.NoError(testInstance, os.WriteFile(pinnedProjectPath, []byte(projectFileWithVersionsConstant), projectFilePermissionsConstant))
	require.NoError(testInstance, os.WriteFile(centralizedProjectPath, []byte(projectFileWithoutVersionsConstant), 0o644))
	require.NoError(testInstance, os.WriteFile(unrelatedFilePath, []byte(projectFileWithVersionsConstant), 0o644))

	noticeBuffer := &bytes.Buffer{}
	service, serviceError := migrate.NewService(migrate.ServiceDependencies{
		Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
		NoticeWriter: noticeBuffer,
	})
	require.NoError(testInstance, serviceError)

	result, executionError := service.Execute(context.Background(), migrate.MigrationOptions{ProjectRoots: []string{rootDirectory}})
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, 2, result.InspectedFileCount)
	require.Equal(testInstance, 2, result.RemovedAttributeCount)
	require.Equal(testInstance, []string{pinnedProjectPath}, result.UpdatedFiles)
	require.Equal(testInstance, fmt.Sprintf(updateNoticeFormatConstant, pinnedProjectPath), noticeBuffer.String())

	rewrittenContent, readError := os.ReadFile(pinnedProjectPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, expectedStrippedProjectFileConstant, string(rewrittenContent))

	untouchedContent, untouchedReadError := os.ReadFile(centralizedProjectPath)
	require.NoError(testInstance, untouchedReadError)
	require.Equal(testInstance, projectFileWithoutVersionsConstant, string(untouchedContent))

	unrelatedContent, unrelatedReadError := os.ReadFile(unrelatedFilePath)
	require.NoError(testInstance, unrelatedReadError)
	require.Equal(testInstance, projectFileWithVersionsConstant, string(unrelatedContent))

	rewrittenFileInfo, statError := os.Stat(pinnedProjectPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(projectFilePermissionsConstant), rewrittenFileInfo.Mode().Perm())
}

func TestServiceExecuteSecondRunLeavesFilesUntouched(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	projectFilePath := filepath.Join(rootDirectory, pinnedProjectFileNameConstant)
	require.NoError(testInstance, os.WriteFile(projectFilePath, []byte(projectFileWithVersionsConstant), 0o644))

	service, serviceError := migrate.NewService(migrate.ServiceDependencies{
		Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
		NoticeWriter: &bytes.Buffer{},
	})
	require.NoError(testInstance, serviceError)

	migrationOptions := migrate.MigrationOptions{ProjectRoots: []string{rootDirectory}}

	firstResult, firstError := service.Execute(context.Background(), migrationOptions)
	require.NoError(testInstance, firstError)
	require.Len(testInstance, firstResult.UpdatedFiles, 1)

	secondNoticeBuffer := &bytes.Buffer{}
	secondService, secondServiceError := migrate.NewService(migrate.ServiceDependencies{
		Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
		NoticeWriter: secondNoticeBuffer,
	})
	require.NoError(testInstance, secondServiceError)

	secondResult, secondError := secondService.Execute(context.Background(), migrationOptions)
	require.NoError(testInstance, secondError)
	require.Empty(testInstance, secondResult.UpdatedFiles)
	require.Zero(testInstance, secondResult.RemovedAttributeCount)
	require.Empty(testInstance, secondNoticeBuffer.String())
}

func TestServiceExecuteMissingRootFails(testInstance *testing.T) {
	service, serviceError := migrate.NewService(migrate.ServiceDependencies{
		Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
		NoticeWriter: &bytes.Buffer{},
	})
	require.NoError(testInstance, serviceError)

	missingRoot := filepath.Join(testInstance.TempDir(), "does-not-exist")
	_, executionError := service.Execute(context.Background(), migrate.MigrationOptions{ProjectRoots: []string{missingRoot}})
	require.Error(testInstance, executionError)
}

func TestServiceExecuteContinueOnError(testInstance *testing.T) {
	testCases := []struct {
		name              string
		continueOnError   bool
		expectFileUpdated bool
	}{
		{
			name:              "fail_fast_stops_before_later_files",
			continueOnError:   false,
			expectFileUpdated: false,
		},
		{
			name:              "continue_on_error_processes_remaining_files",
			continueOnError:   true,
			expectFileUpdated: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			rootDirectory := testInstance.TempDir()
			projectFilePath := filepath.Join(rootDirectory, pinnedProjectFileNameConstant)
			require.NoError(testInstance, os.WriteFile(projectFilePath, []byte(projectFileWithVersionsConstant), 0o644))

			missingFilePath := filepath.Join(rootDirectory, missingProjectFilePathConstant)
			discoverer := &stubProjectFileDiscoverer{projectFiles: []string{missingFilePath, projectFilePath}}

			noticeBuffer := &bytes.Buffer{}
			service, serviceError := migrate.NewService(migrate.ServiceDependencies{
				Discoverer:   discoverer,
				NoticeWriter: noticeBuffer,
			})
			require.NoError(testInstance, serviceError)

			result, executionError := service.Execute(context.Background(), migrate.MigrationOptions{
				ProjectRoots:    []string{rootDirectory},
				ContinueOnError: testCase.continueOnError,
			})
			require.Error(testInstance, executionError)

			if testCase.expectFileUpdated {
				require.Equal(testInstance, []string{projectFilePath}, result.UpdatedFiles)
				require.Equal(testInstance, fmt.Sprintf(updateNoticeFormatConstant, projectFilePath), noticeBuffer.String())
			} else {
				require.Empty(testInstance, result.UpdatedFiles)
				require.Empty(testInstance, noticeBuffer.String())
			}
		})
	}
}

func TestServiceExecuteHonorsCancelledContext(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	projectFilePath := filepath.Join(rootDirectory, pinnedProjectFileNameConstant)
	require.NoError(testInstance, os.WriteFile(projectFilePath, []byte(projectFileWithVersionsConstant), 0o644))

	service, serviceError := migrate.NewService(migrate.ServiceDependencies{
		Discoverer:   discovery.NewFilesystemProjectFileDiscoverer(),
		NoticeWriter: &bytes.Buffer{},
	})
	require.NoError(testInstance, serviceError)

	cancelledContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	_, executionError := service.Execute(cancelledContext, migrate.MigrationOptions{ProjectRoots: []string{rootDirectory}})
	require.ErrorIs(testInstance, executionError, context.Canceled)

	untouchedContent, readError := os.ReadFile(projectFilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, projectFileWithVersionsConstant, string(untouchedContent))
}

func TestNewServiceRequiresDiscoverer(testInstance *testing.T) {
	_, serviceError := migrate.NewService(migrate.ServiceDependencies{})
	require.Error(testInstance, serviceError)
}

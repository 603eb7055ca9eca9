package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is an autogenerated mock type for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []interface{}{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// GetBranchName implements the GitClient interface.
func (m *MockGitClient) GetBranchName(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	name, _ := ret.Get(0).(string)
	return name, ret.Error(1)
}

// HasParentCommit implements the GitClient interface.
func (m *MockGitClient) HasParentCommit(ctx context.Context, repoPath string) (bool, error) {
	ret := m.Called(ctx, repoPath)
	has, _ := ret.Get(0).(bool)
	return has, ret.Error(1)
}

// GetDiffNumstat implements the GitClient interface.
func (m *MockGitClient) GetDiffNumstat(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetChangedPaths implements the GitClient interface.
func (m *MockGitClient) GetChangedPaths(ctx context.Context, repoPath string) ([]string, error) {
	ret := m.Called(ctx, repoPath)
	paths, _ := ret.Get(0).([]string)
	return paths, ret.Error(1)
}

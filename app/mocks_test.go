package app

import (
	"context"
	"io"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/stretchr/testify/mock"
)

// MockFileReader is a mock implementation of domain.FileReader
type MockFileReader struct {
	mock.Mock
}

func (m *MockFileReader) FileExists(path string) (bool, error) {
	args := m.Called(path)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileReader) IsValidTreeFile(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileReader) CollectTreeFiles(paths []string, recursive bool, includePatterns []string, excludePatterns []string) ([]string, error) {
	args := m.Called(paths, recursive, includePatterns, excludePatterns)
	return args.Get(0).([]string), args.Error(1)
}

type mockDistanceService struct {
	mock.Mock
}

func (m *mockDistanceService) Distance(ctx context.Context, req domain.DistanceRequest) (*domain.DistanceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistanceResponse), args.Error(1)
}

func (m *mockDistanceService) Mappings(ctx context.Context, req domain.DistanceRequest) (*domain.MappingsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MappingsResponse), args.Error(1)
}

type mockDistanceFormatter struct {
	mock.Mock
}

func (m *mockDistanceFormatter) FormatDistance(response *domain.DistanceResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

func (m *mockDistanceFormatter) FormatMappings(response *domain.MappingsResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

type mockBatchService struct {
	mock.Mock
}

func (m *mockBatchService) Compare(ctx context.Context, files []string, req domain.BatchRequest) (*domain.BatchResponse, error) {
	args := m.Called(ctx, files, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResponse), args.Error(1)
}

type mockBatchFormatter struct {
	mock.Mock
}

func (m *mockBatchFormatter) FormatBatch(response *domain.BatchResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

// passThroughWriter calls writeFunc with the given writer
type passThroughWriter struct {
	paths []string
}

func (p *passThroughWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	p.paths = append(p.paths, outputPath)
	return writeFunc(writer)
}

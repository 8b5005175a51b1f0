package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/treedit/domain"
)

// BatchUseCase orchestrates pairwise comparison of many tree files
type BatchUseCase struct {
	service    domain.BatchService
	fileReader domain.FileReader
	formatter  domain.BatchOutputFormatter
	output     domain.ReportWriter
}

// NewBatchUseCase creates a new batch use case
func NewBatchUseCase(
	service domain.BatchService,
	fileReader domain.FileReader,
	formatter domain.BatchOutputFormatter,
	output domain.ReportWriter,
) *BatchUseCase {
	return &BatchUseCase{
		service:    service,
		fileReader: fileReader,
		formatter:  formatter,
		output:     output,
	}
}

// Execute collects the tree files, compares every pair and writes the matrix
func (uc *BatchUseCase) Execute(ctx context.Context, req domain.BatchRequest) (*domain.BatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return nil, domain.NewInvalidInputError("invalid request", fmt.Errorf("output writer or output path is required"))
	}

	files, err := ResolveFilePaths(
		uc.fileReader,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, asDomainError("failed to collect files", err)
	}

	if len(files) < 2 {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("at least two tree files are required, found %d in the specified paths", len(files)), nil)
	}

	response, err := uc.service.Compare(ctx, files, req)
	if err != nil {
		return nil, asDomainError("batch comparison failed", err)
	}

	err = uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.FormatBatch(response, req.OutputFormat, w)
	})
	if err != nil {
		return response, asOutputError(err)
	}

	return response, nil
}

// BatchUseCaseBuilder provides a builder pattern for creating BatchUseCase
type BatchUseCaseBuilder struct {
	service    domain.BatchService
	fileReader domain.FileReader
	formatter  domain.BatchOutputFormatter
	output     domain.ReportWriter
}

// NewBatchUseCaseBuilder creates a new builder
func NewBatchUseCaseBuilder() *BatchUseCaseBuilder {
	return &BatchUseCaseBuilder{}
}

// WithService sets the batch service
func (b *BatchUseCaseBuilder) WithService(service domain.BatchService) *BatchUseCaseBuilder {
	b.service = service
	return b
}

// WithFileReader sets the file reader
func (b *BatchUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *BatchUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithFormatter sets the output formatter
func (b *BatchUseCaseBuilder) WithFormatter(formatter domain.BatchOutputFormatter) *BatchUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *BatchUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *BatchUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the BatchUseCase with the configured dependencies
func (b *BatchUseCaseBuilder) Build() (*BatchUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("batch service is required")
	}
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}

	return NewBatchUseCase(b.service, b.fileReader, b.formatter, b.output), nil
}

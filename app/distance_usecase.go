package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/treedit/domain"
)

// DistanceUseCase orchestrates comparing two trees and reporting the result
type DistanceUseCase struct {
	service   domain.DistanceService
	formatter domain.DistanceOutputFormatter
	output    domain.ReportWriter
}

// NewDistanceUseCase creates a new distance use case
func NewDistanceUseCase(
	service domain.DistanceService,
	formatter domain.DistanceOutputFormatter,
	output domain.ReportWriter,
) *DistanceUseCase {
	return &DistanceUseCase{
		service:   service,
		formatter: formatter,
		output:    output,
	}
}

// Execute computes the distance and writes the report
func (uc *DistanceUseCase) Execute(ctx context.Context, req domain.DistanceRequest) (*domain.DistanceResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	response, err := uc.service.Distance(ctx, req)
	if err != nil {
		return nil, asDomainError("tree edit distance failed", err)
	}

	err = uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.FormatDistance(response, req.OutputFormat, w)
	})
	if err != nil {
		return response, asOutputError(err)
	}

	return response, nil
}

// ExecuteMappings enumerates every valid mapping and writes the report
func (uc *DistanceUseCase) ExecuteMappings(ctx context.Context, req domain.DistanceRequest) (*domain.MappingsResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	response, err := uc.service.Mappings(ctx, req)
	if err != nil {
		return nil, asDomainError("mapping enumeration failed", err)
	}

	err = uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, func(w io.Writer) error {
		return uc.formatter.FormatMappings(response, req.OutputFormat, w)
	})
	if err != nil {
		return response, asOutputError(err)
	}

	return response, nil
}

func (uc *DistanceUseCase) validateRequest(req domain.DistanceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !req.HasValidOutputWriter() && req.OutputPath == "" {
		return domain.NewInvalidInputError("invalid request", fmt.Errorf("output writer or output path is required"))
	}
	return nil
}

// asDomainError keeps domain errors as they are so their codes survive
func asDomainError(message string, err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}
	return domain.NewAnalysisError(message, err)
}

func asOutputError(err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}
	return domain.NewOutputError("failed to write output", err)
}

// DistanceUseCaseBuilder provides a builder pattern for creating DistanceUseCase
type DistanceUseCaseBuilder struct {
	service   domain.DistanceService
	formatter domain.DistanceOutputFormatter
	output    domain.ReportWriter
}

// NewDistanceUseCaseBuilder creates a new builder
func NewDistanceUseCaseBuilder() *DistanceUseCaseBuilder {
	return &DistanceUseCaseBuilder{}
}

// WithService sets the distance service
func (b *DistanceUseCaseBuilder) WithService(service domain.DistanceService) *DistanceUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *DistanceUseCaseBuilder) WithFormatter(formatter domain.DistanceOutputFormatter) *DistanceUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *DistanceUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *DistanceUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the DistanceUseCase with the configured dependencies
func (b *DistanceUseCaseBuilder) Build() (*DistanceUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("distance service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}
	if b.output == nil {
		return nil, fmt.Errorf("report writer is required")
	}

	return NewDistanceUseCase(b.service, b.formatter, b.output), nil
}

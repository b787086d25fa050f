package common

import (
	"context"
	"fmt"
	"io"

	"resuin/internal/errors"
)

// OperationFunc produces a command result from the extracted text of the
// command's input documents.
type OperationFunc[Output any] func(ctx context.Context, documents []string) (Output, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc func(documents []string, cfg CommandConfig)

// RunCommand encapsulates the common logic for file-based CLI commands:
// read and extract the input documents, run the operation, then format and
// write the result.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	stdout io.Writer,
	cmdConfig CommandConfig,
	args []string,
	operation OperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandlerTo(logger, stdout)

	documents, err := fileProcessor.ValidateAndReadDocuments(args...)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(documents, cmdConfig)
	}

	result, err := operation(ctx, documents)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

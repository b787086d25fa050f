package common

import (
	"fmt"
	"io"

	"resuin/internal/errors"
	"resuin/internal/formatters"
)

// CommandConfig holds the output settings shared by the analysis commands.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64
}

// OutputHandler renders command results and writes them to a file or to
// the command's standard output.
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	stdout        io.Writer
}

// NewOutputHandlerTo creates an output handler that writes to w when no
// output file is configured.
func NewOutputHandlerTo(logger *errors.Logger, w io.Writer) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
		stdout:        w,
	}
}

// HandleOutput formats data as config.OutputFormat and writes it out.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		if _, err := fmt.Fprintln(oh.stdout, output); err != nil {
			return errors.NewIOError("STDOUT_WRITE_FAILED", "Cannot write output", err)
		}
		return nil
	}

	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}
	if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
		return err
	}
	if oh.logger != nil {
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
	}
	return nil
}

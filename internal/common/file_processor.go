package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resuin/internal/errors"
	"resuin/internal/extract"
	"resuin/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. Input files larger
// than maxFileSize bytes are rejected; zero disables the limit.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	data, err := fp.readBytes(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (fp *FileProcessor) readBytes(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// ReadDocument reads a resume document and returns its text. The document
// type is taken from the extension, falling back to content sniffing.
func (fp *FileProcessor) ReadDocument(filename string) (string, error) {
	if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	// Warn about files the extractor will have to sniff
	if !utils.IsSupportedDocument(filename) && fp.logger != nil {
		fp.logger.Warn("Unrecognized document extension, detecting type from content",
			"filename", filename)
	}

	data, err := fp.readBytes(filename)
	if err != nil {
		return "", err // Error already wrapped by readBytes
	}

	mimeType := extract.DetectMIMEType(filename, data)
	text, err := extract.Text(data, mimeType)
	if err != nil {
		return "", err
	}
	if fp.logger != nil {
		fp.logger.Debug("Extracted document text",
			"filename", filename, "mime_type", mimeType,
			"size", utils.FormatFileSize(int64(len(data))), "characters", len(text))
	}
	return text, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadDocuments validates and extracts multiple input documents
func (fp *FileProcessor) ValidateAndReadDocuments(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		content, err := fp.ReadDocument(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}

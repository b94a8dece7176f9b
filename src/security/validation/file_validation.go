package validation

import (
	"bytes"
	"fmt"
	"io"

	"github.com/username/investfolio/backend/src/logger"
)

// xlsx files are zip archives; every zip starts with this local file header.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// ValidateStatementSize rejects files outside the configured size limit.
func ValidateStatementSize(size, maxSize int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > maxSize {
		return fmt.Errorf("file size %d exceeds limit of %d bytes", size, maxSize)
	}
	return nil
}

// ValidateFileContentByMagicBytes checks the actual file content signature.
// Broker statements are xlsx workbooks, so the content must be a zip archive.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, len(zipMagic))
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("failed to read file for content type checking: %w", err)
	}

	// Reset the read pointer so the actual parser can read the full file.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if !bytes.Equal(buffer[:n], zipMagic) {
		logger.L.Warn("File content signature is not an xlsx workbook")
		return fmt.Errorf("file content is not an xlsx workbook")
	}

	logger.L.Debug("File content signature validated as xlsx")
	return nil
}

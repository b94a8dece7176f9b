package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStatementSize(t *testing.T) {
	assert.NoError(t, ValidateStatementSize(1024, 2048))
	assert.Error(t, ValidateStatementSize(0, 2048))
	assert.Error(t, ValidateStatementSize(4096, 2048))
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	xlsx := bytes.NewReader([]byte{0x50, 0x4b, 0x03, 0x04, 0x14, 0x00})
	require.NoError(t, ValidateFileContentByMagicBytes(xlsx))

	// the reader is rewound for the parser
	pos, err := xlsx.Seek(0, 1)
	require.NoError(t, err)
	assert.Zero(t, pos)

	csv := bytes.NewReader([]byte("isin;count\n"))
	assert.Error(t, ValidateFileContentByMagicBytes(csv))

	short := bytes.NewReader([]byte{0x50, 0x4b})
	assert.Error(t, ValidateFileContentByMagicBytes(short))

	assert.Error(t, ValidateFileContentByMagicBytes(nil))
}

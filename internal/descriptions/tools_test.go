package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	assert.Contains(t, GetToolDescription("copa_classify_file"), "COPA disclosure form")
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{
		"copa_classify_file",
		"copa_extract_file",
		"copa_list_files",
		"copa_server_info",
		"copa_validate_file",
	}, GetAllToolNames())
}

package descriptions

import "sort"

// Tool descriptions with practical examples for the listing tools

const (
	CopaClassifyFileDescription = `Identify which COPA disclosure form a PDF contains and on which page.

**When to use:** Before extracting, to check that a seller's packet actually includes a COPA form.

**Why it's useful:** Seller packets mix cover letters, rent rolls and forms. Classification finds the one page the extractors should read.

**Examples:**
• "Which form is in 450-sutter-packet.pdf?"
• "Does notice.pdf contain a Notice of Intent to Sell?"

**Result:** the variant (COPA3 or COPA4), the zero-based page index, and the marker phrases that matched. Unrecognized documents report no variant and page -1.`

	CopaExtractFileDescription = `Extract the listing fields from a COPA disclosure form.

**When to use:** To preview what the pipeline would store for a PDF without touching the database.

**Why it's useful:** Shows the address breakdown, unit counts, seller and financial figures exactly as the extractors read them.

**Examples:**
• "Extract the listing from 450-sutter-packet.pdf"
• "Extract and geocode copa4-notice.pdf"

**Common workflow:** copa_validate_file → copa_classify_file → copa_extract_file

**Best practices:** Set geocode to true to also resolve coordinates and the San Francisco neighborhood. Geocoding calls Nominatim and is throttled to one request per second.`

	CopaValidateFileDescription = `Verify that a file is a readable PDF and report its page count.

**When to use:** Before classifying or extracting, especially for files received by email.

**Why it's useful:** Catches truncated or non-PDF attachments before they reach the extractors.`

	CopaListFilesDescription = `List the PDF files in the working directory, newest first.

**When to use:** To find the file name to pass to the other tools.

**Parameters:** query filters names case-insensitively.`

	CopaServerInfoDescription = `Show server configuration, available tools and the working directory.

**When to use:** First call in a session, to learn what the server can do and where it reads files from.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"copa_classify_file": CopaClassifyFileDescription,
	"copa_extract_file":  CopaExtractFileDescription,
	"copa_validate_file": CopaValidateFileDescription,
	"copa_list_files":    CopaListFilesDescription,
	"copa_server_info":   CopaServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

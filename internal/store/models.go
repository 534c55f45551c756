package store

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Email is one inbound message from the emails table.
type Email struct {
	ID           uuid.UUID
	Subject      string
	FromAddress  string
	RawText      string
	RawHTML      string
	ReceivedDate time.Time
	Processed    bool
	ListingID    *uuid.UUID
}

// Body is the plain text body, falling back to the HTML body.
func (e Email) Body() string {
	if e.RawText != "" {
		return e.RawText
	}
	return e.RawHTML
}

// Linked reports whether the email already points at a listing.
func (e Email) Linked() bool {
	return e.ListingID != nil && *e.ListingID != uuid.Nil
}

// Attachment is one row of email_attachments.
type Attachment struct {
	ID            uuid.UUID
	EmailID       uuid.UUID
	Filename      string
	ContentType   string
	StoragePath   string
	ExtractedText string
	IsInline      bool
}

// IsPDF reports whether the attachment looks like a PDF by type or name.
func (a Attachment) IsPDF() bool {
	if strings.EqualFold(a.ContentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(path.Ext(a.Filename), ".pdf")
}

// Package core provides the shared model of uicheck: the driver
// collaborator, structured errors, recorded failures and attachments.
package core

import (
	"time"
)

// Attachment represents a diagnostic artifact captured during a scenario
type Attachment struct {
	Name        string    `json:"name"`           // Descriptive name: screenshot, marker
	Label       string    `json:"label"`          // Step or reason the capture was taken for
	ContentType string    `json:"contentType"`    // MIME type: image/png, text/plain
	Path        string    `json:"path,omitempty"` // File path relative to output directory
	Time        time.Time `json:"time"`
	Body        []byte    `json:"-"` // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
	AttachmentMarker     = "marker"
)

// Common content types
const (
	ContentTypePNG  = "image/png"
	ContentTypeText = "text/plain"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(label string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		Label:       label,
		ContentType: ContentTypePNG,
		Time:        time.Now(),
		Body:        data,
	}
}

// NewMarkerAttachment records that a capture was requested but no image was
// available (driver without screenshot support, capture error).
func NewMarkerAttachment(label, note string) Attachment {
	return Attachment{
		Name:        AttachmentMarker,
		Label:       label,
		ContentType: ContentTypeText,
		Time:        time.Now(),
		Body:        []byte(note),
	}
}

// ArtifactConfig controls when diagnostic captures are taken
type ArtifactConfig struct {
	CaptureOnMismatch bool `yaml:"captureOnMismatch" json:"captureOnMismatch"` // Default: true
	CaptureOnError    bool `yaml:"captureOnError" json:"captureOnError"`       // Default: true
	CaptureOnSuccess  bool `yaml:"captureOnSuccess" json:"captureOnSuccess"`   // Default: false
}

// DefaultArtifactConfig returns sensible defaults for artifact capture
func DefaultArtifactConfig() ArtifactConfig {
	return ArtifactConfig{
		CaptureOnMismatch: true,
		CaptureOnError:    true,
		CaptureOnSuccess:  false,
	}
}

// ShouldCapture returns true if artifacts should be captured for the given status
func (c ArtifactConfig) ShouldCapture(status ScenarioStatus) bool {
	switch status {
	case StatusFailed:
		return c.CaptureOnMismatch
	case StatusErrored:
		return c.CaptureOnError
	case StatusPassed:
		return c.CaptureOnSuccess
	default:
		return false
	}
}

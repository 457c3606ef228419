package chat

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPart     = errors.New("part must carry text or a file reference")
	ErrAmbiguousPart = errors.New("part must carry either text or a file reference, not both")
	ErrEmptyMessage  = errors.New("message must contain at least one part")
)

// FileRef points at an uploaded attachment owned by the file store.
type FileRef struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
}

// Part is one fragment of a message: text or a file reference.
type Part struct {
	Text    string   `json:"text,omitempty"`
	FileRef *FileRef `json:"fileRef,omitempty"`
}

// TextPart builds a text fragment.
func TextPart(text string) Part {
	return Part{Text: text}
}

// FilePart builds a file fragment.
func FilePart(uri, mimeType string) Part {
	return Part{FileRef: &FileRef{URI: uri, MIMEType: mimeType}}
}

// IsFile reports whether the part references an attachment.
func (p Part) IsFile() bool {
	return p.FileRef != nil
}

// Validate enforces that exactly one variant is populated.
func (p Part) Validate() error {
	hasText := strings.TrimSpace(p.Text) != ""
	switch {
	case hasText && p.FileRef != nil:
		return ErrAmbiguousPart
	case p.FileRef != nil:
		if strings.TrimSpace(p.FileRef.URI) == "" || strings.TrimSpace(p.FileRef.MIMEType) == "" {
			return errors.New("file reference requires uri and mimeType")
		}
		return nil
	case hasText:
		return nil
	default:
		return ErrEmptyPart
	}
}

// Message is one side of a turn.
type Message struct {
	Parts []Part `json:"parts"`
}

// Validate checks every part of the message.
func (m Message) Validate() error {
	if len(m.Parts) == 0 {
		return ErrEmptyMessage
	}
	for _, p := range m.Parts {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasFiles reports whether any part references an attachment.
func (m Message) HasFiles() bool {
	for _, p := range m.Parts {
		if p.IsFile() {
			return true
		}
	}
	return false
}

// Text joins the text parts of the message.
func (m Message) Text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if !p.IsFile() && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

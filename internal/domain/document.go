package domain

import (
	"time"

	"github.com/google/uuid"
)

// Origin names where a document came from.
type Origin string

const (
	OriginFile       Origin = "file"
	OriginRepository Origin = "repository"
)

// Document is the single text blob loaded for analysis. It is a value: a new
// load produces a new Document, it is never edited in place.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Origin      Origin    `json:"origin"`
	OriginLabel string    `json:"origin_label"`
	Content     string    `json:"content"`
	SizeBytes   int64     `json:"size_bytes"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// NewDocument stamps a fresh identity on loaded content.
func NewDocument(origin Origin, label, content string) Document {
	return Document{
		ID:          uuid.New(),
		Origin:      origin,
		OriginLabel: label,
		Content:     content,
		SizeBytes:   int64(len(content)),
		LoadedAt:    time.Now().UTC(),
	}
}

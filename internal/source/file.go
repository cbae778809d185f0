package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"smart-docs/internal/domain"
)

const unsupportedFileMessage = "Unsupported file type: only .md and .txt files are accepted."

var (
	allowedExtensions = map[string]bool{".md": true, ".txt": true}
	allowedMediaTypes = map[string]bool{"text/markdown": true, "text/plain": true}
)

// File is an uploaded or dropped file handle.
type File struct {
	Name     string
	MIMEType string
	Body     io.Reader
	// MaxBytes bounds the read; zero means unbounded.
	MaxBytes int64
}

var _ Source = File{}

func (f File) Origin() domain.Origin { return domain.OriginFile }

// Load validates the file type and decodes the body as UTF-8 text.
func (f File) Load(ctx context.Context) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	if !Accepts(f.Name, f.MIMEType) {
		return domain.Document{}, domain.Invalid(unsupportedFileMessage)
	}
	if f.Body == nil {
		return domain.Document{}, domain.Wrap(domain.ErrDecode, "Could not read the file.", fmt.Errorf("no file body"))
	}

	r := f.Body
	if f.MaxBytes > 0 {
		r = io.LimitReader(f.Body, f.MaxBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return domain.Document{}, domain.Wrap(domain.ErrDecode, "Could not read the file.", err)
	}
	if f.MaxBytes > 0 && int64(len(content)) > f.MaxBytes {
		return domain.Document{}, domain.Invalid(fmt.Sprintf("File too large (max %d bytes).", f.MaxBytes))
	}
	if !utf8.Valid(content) {
		return domain.Document{}, domain.Wrap(domain.ErrDecode, "Could not read the file as UTF-8 text.", fmt.Errorf("%s: invalid utf-8", f.Name))
	}

	return domain.NewDocument(domain.OriginFile, f.Name, string(content)), nil
}

// Accepts reports whether a file is a markdown or plain-text document, by
// extension or by declared media type.
func Accepts(name, mimeType string) bool {
	if allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	if mimeType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return allowedMediaTypes[mediaType]
}

// OpenFile prepares a File from disk. The caller closes the returned closer
// once the file has been loaded.
func OpenFile(path string, maxBytes int64) (File, io.Closer, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, nil, domain.Wrap(domain.ErrDecode, "Could not open the file.", err)
	}
	return File{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Body:     fh,
		MaxBytes: maxBytes,
	}, fh, nil
}

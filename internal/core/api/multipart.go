package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form assembles a multipart/form-data payload: ordered text fields plus at
// most one file part. Field names must match what the server's upload
// handlers expect; the facades own those names.
type Form struct {
	fields    [][2]string
	fileField string
	fileName  string
	file      io.Reader
}

// NewForm creates an empty Form.
func NewForm() *Form {
	return &Form{}
}

// Field appends a text field. Returns the form for chaining.
func (f *Form) Field(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// File sets the single file part. Calling it again replaces the part.
func (f *Form) File(field, filename string, r io.Reader) *Form {
	f.fileField = field
	f.fileName = filename
	f.file = r
	return f
}

// Encode writes the form into a buffer and returns the content type
// (including the boundary) together with the body reader.
func (f *Form) Encode() (string, io.Reader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return "", nil, fmt.Errorf("write form field %q: %w", field[0], err)
		}
	}
	if f.file != nil {
		part, err := w.CreateFormFile(f.fileField, f.fileName)
		if err != nil {
			return "", nil, fmt.Errorf("create form file %q: %w", f.fileField, err)
		}
		if _, err := io.Copy(part, f.file); err != nil {
			return "", nil, fmt.Errorf("copy form file %q: %w", f.fileField, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("finalize form: %w", err)
	}
	return w.FormDataContentType(), &buf, nil
}

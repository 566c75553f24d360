package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// Form is a mutation payload carrying file uploads. Passing a *Form to
// Create or Update switches the request to multipart form data; any other
// payload is sent as JSON.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	key, value string
}

type formFile struct {
	field, filename string
	content         io.Reader
}

func NewForm() *Form {
	return &Form{}
}

// Set adds a plain form field.
func (f *Form) Set(key, value string) *Form {
	f.fields = append(f.fields, formField{key: key, value: value})
	return f
}

// SetJSON adds a field holding the JSON encoding of v, for nested objects
// the server expects inside multipart bodies.
func (f *Form) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode form field %q: %w", key, err)
	}
	f.fields = append(f.fields, formField{key: key, value: string(data)})
	return nil
}

// AddFile attaches an upload under the given field name.
func (f *Form) AddFile(field, filename string, content io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

// encode renders the multipart body once; file readers are consumed here so
// the encoded bytes can be replayed on a retried request.
func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.key, field.value); err != nil {
			return nil, "", fmt.Errorf("write form field %q: %w", field.key, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %q: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, "", fmt.Errorf("write form file %q: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

package firemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Body is the payload of a POST or PUT. It is encoded again for every
// attempt of a retried request.
type Body interface {
	encode() (payload []byte, contentType string, err error)
	String() string
}

// File is a single part of a multipart upload.
type File struct {
	Field       string
	Name        string
	Content     []byte
	ContentType string
}

type jsonBody struct{ v any }

// JSONBody sends v as application/json.
func JSONBody(v any) Body { return jsonBody{v} }

func (b jsonBody) encode() ([]byte, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal json body: %w", err)
	}
	return data, "application/json", nil
}

func (b jsonBody) String() string {
	data, _ := json.Marshal(b.v)
	return string(data)
}

type formBody struct{ v url.Values }

// FormBody sends v as application/x-www-form-urlencoded.
func FormBody(v url.Values) Body { return formBody{v} }

func (b formBody) encode() ([]byte, string, error) {
	return []byte(b.v.Encode()), "application/x-www-form-urlencoded", nil
}

func (b formBody) String() string {
	keys := make([]string, 0, len(b.v))
	for k := range b.v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "form fields: " + strings.Join(keys, ",")
}

type textBody struct{ s string }

// TextBody sends s as text/plain.
func TextBody(s string) Body { return textBody{s} }

func (b textBody) encode() ([]byte, string, error) {
	return []byte(b.s), "text/plain", nil
}

func (b textBody) String() string { return b.s }

type multipartBody struct {
	fields url.Values
	files  []File
}

// MultipartBody sends files, and optional plain fields, as multipart/form-data.
func MultipartBody(fields url.Values, files ...File) Body {
	return multipartBody{fields: fields, files: files}
}

func (b multipartBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, vals := range b.fields {
		for _, v := range vals {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", k, err)
			}
		}
	}

	for _, f := range b.files {
		name := f.Name
		if name == "" {
			name = f.Field
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (b multipartBody) String() string {
	names := make([]string, 0, len(b.files))
	for _, f := range b.files {
		names = append(names, fmt.Sprintf("%s(%d bytes)", f.Field, len(f.Content)))
	}
	return "files: " + strings.Join(names, ",")
}

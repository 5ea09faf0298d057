package firemon

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// toUTF8 returns body as UTF-8. Bodies that are already valid UTF-8 or that
// are not textual are returned unchanged. Otherwise the charset comes from
// the Content-Type parameter or is sniffed from the content.
func toUTF8(body []byte, contentType string) []byte {
	if len(body) == 0 || utf8.Valid(body) || !isTextual(contentType) {
		return body
	}

	enc, _, _ := charset.DetermineEncoding(body, contentType)
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return body
	}
	return out
}

// isTextual reports whether a media type carries text that may need
// transcoding. An empty Content-Type is treated as text.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if _, ok := params["charset"]; ok {
		return true
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"),
		strings.HasSuffix(mediaType, "json"),
		strings.HasSuffix(mediaType, "xml"):
		return true
	}
	return false
}

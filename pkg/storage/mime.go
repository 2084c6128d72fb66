package storage

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
)

const (
	MIMEOctetStream = "application/octet-stream"
	MIMEJPEG        = "image/jpeg"
	MIMEPDF         = "application/pdf"

	sniffLen = 512 // all http.DetectContentType looks at
)

// ImageMIMETypes lists the raster formats the imaging pipeline can decode.
var ImageMIMETypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

// DetectContentType sniffs the MIME type from magic bytes, without
// parameters. Empty input is application/octet-stream.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return MIMEOctetStream
	}
	return baseMIME(http.DetectContentType(data[:min(len(data), sniffLen)]))
}

// IsImageMIME reports whether mimeType is one of ImageMIMETypes.
func IsImageMIME(mimeType string) bool {
	return slices.Contains(ImageMIMETypes, baseMIME(mimeType))
}

// prepareBody returns a seekable body for r plus its content type. The AWS
// SDK hashes the payload before sending, so plain readers are buffered.
// An empty contentType is sniffed from the first bytes.
func prepareBody(r io.Reader, contentType string) (string, io.ReadSeeker, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", nil, err
		}
		rs = bytes.NewReader(data)
	}
	if contentType != "" {
		return contentType, rs, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", nil, err
	}
	return DetectContentType(head[:n]), rs, nil
}

// baseMIME lowercases a MIME type and strips parameters such as charset.
func baseMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// matchesMIME reports whether mimeType matches one of the patterns.
// A pattern ending in "/*" matches the whole top-level type.
func matchesMIME(mimeType string, patterns []string) bool {
	mimeType = baseMIME(mimeType)
	return slices.ContainsFunc(patterns, func(p string) bool {
		p = baseMIME(p)
		if family, ok := strings.CutSuffix(p, "/*"); ok {
			return strings.HasPrefix(mimeType, family+"/")
		}
		return p == mimeType
	})
}

package userfiles

import (
	"mime"

	"github.com/dmitrymomot/resumestore/pkg/storage"
)

// Metadata is the HTTP metadata stored with an object.
type Metadata struct {
	ContentType        string
	ContentDisposition string // empty for images
}

// SelectMetadata returns the metadata for an object of category c whose
// normalized filename is name. Images are served inline; documents carry an
// attachment disposition so browsers suggest "<name>.pdf" on download.
func SelectMetadata(c Category, name string) Metadata {
	md := Metadata{ContentType: c.ContentType()}
	if !c.IsImage() {
		md.ContentDisposition = mime.FormatMediaType("attachment", map[string]string{
			"filename": name + "." + c.Extension(),
		})
	}
	return md
}

func (m Metadata) putOptions() []storage.Option {
	opts := []storage.Option{storage.WithContentType(m.ContentType)}
	if m.ContentDisposition != "" {
		opts = append(opts, storage.WithContentDisposition(m.ContentDisposition))
	}
	return opts
}

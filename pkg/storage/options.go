package storage

// Option configures Put operations.
type Option func(*putOptions)

// putOptions holds configuration for Put operations.
type putOptions struct {
	contentType        string // Override detected content type
	contentDisposition string // Content-Disposition header served with the object
	cacheControl       string // Cache-Control header served with the object
	acl                ACL    // Canned ACL; empty leaves bucket defaults in charge
}

func newPutOptions(opts ...Option) *putOptions {
	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithContentType sets the Content-Type instead of detecting it from magic bytes.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// WithContentDisposition sets the Content-Disposition header, e.g.
// `attachment; filename=cv.pdf` to make browsers download the object.
func WithContentDisposition(cd string) Option {
	return func(o *putOptions) {
		o.contentDisposition = cd
	}
}

// WithCacheControl sets the Cache-Control header.
func WithCacheControl(cc string) Option {
	return func(o *putOptions) {
		o.cacheControl = cc
	}
}

// WithACL sets a canned ACL for this upload.
// Buckets with object ownership enforced reject ACLs; prefer bucket policies there.
func WithACL(acl ACL) Option {
	return func(o *putOptions) {
		o.acl = acl
	}
}

package userfiles

import (
	"log/slog"

	"github.com/dmitrymomot/resumestore/pkg/events"
	"github.com/dmitrymomot/resumestore/pkg/id"
	"github.com/dmitrymomot/resumestore/pkg/storage"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the generator used for filenames that normalize
// to an empty string. The default is id.NewLowerULID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithCacheControl sets a Cache-Control header on every uploaded object.
func WithCacheControl(v string) Option {
	return func(s *Service) {
		s.cacheControl = v
	}
}

// WithObjectACL sends a canned ACL with every upload. Needed for stores
// that ignore bucket policies; leave it unset on S3 buckets with object
// ownership enforced, which reject ACLs.
func WithObjectACL(acl storage.ACL) Option {
	return func(s *Service) {
		s.objectACL = acl
	}
}

// WithPublisher sends a lifecycle event after every successful upload,
// delete and folder delete. Publish failures are logged and do not fail the
// operation.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func defaultIDGenerator() string {
	return id.NewLowerULID()
}

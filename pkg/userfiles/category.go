package userfiles

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/resumestore/pkg/storage"
)

// Category is an upload kind. Its value is the key path segment.
type Category string

const (
	Pictures Category = "pictures" // profile pictures
	Previews Category = "previews" // rendered resume previews
	Resumes  Category = "resumes"  // resume PDF documents
)

// aliases maps descriptive names to categories.
var aliases = map[string]Category{
	"profile-picture": Pictures,
	"preview-image":   Previews,
	"resume-document": Resumes,
}

// Categories returns all categories in path order.
func Categories() []Category {
	return []Category{Pictures, Previews, Resumes}
}

// ParseCategory accepts a path segment ("pictures") or a descriptive alias
// ("profile-picture"), case-insensitively.
func ParseCategory(s string) (Category, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c := Category(v); c.Valid() {
		return c, nil
	}
	if c, ok := aliases[v]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Pictures, Previews, Resumes:
		return true
	}
	return false
}

// IsImage reports whether objects of this category are images.
func (c Category) IsImage() bool {
	return c == Pictures || c == Previews
}

// Extension returns the stored file extension without the dot.
func (c Category) Extension() string {
	if c.IsImage() {
		return "jpg"
	}
	return "pdf"
}

// ContentType returns the stored content type.
func (c Category) ContentType() string {
	if c.IsImage() {
		return storage.MIMEJPEG
	}
	return storage.MIMEPDF
}

func (c Category) String() string {
	return string(c)
}

// PublicPatterns returns the bucket policy patterns that make every
// category readable without credentials.
func PublicPatterns() []string {
	cats := Categories()
	patterns := make([]string, len(cats))
	for i, c := range cats {
		patterns[i] = "*/" + string(c) + "/*"
	}
	return patterns
}

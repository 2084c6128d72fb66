package userfiles

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/resumestore/pkg/slug"
)

// maxFilenameLength bounds the normalized filename, not the whole key.
const maxFilenameLength = 100

var (
	tenantPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// Only extensions of formats an upload can carry are dropped, so
	// "John.Smith" and "John.Doe" stay distinct.
	extPattern = regexp.MustCompile(`(?i)\.(pdf|jpe?g|png|gif|webp|bmp)$`)
)

// NormalizeFilename turns a user-supplied filename into a URL-safe slug.
// A trailing upload extension (.pdf, .jpg, .png, ...) is dropped first
// since the stored extension comes from the category. Other dots are plain
// punctuation. The result may be empty.
//
//	NormalizeFilename("My Resume.pdf")  // "my-resume"
//	NormalizeFilename("Jürgen's CV")    // "jurgen-s-cv"
//	NormalizeFilename("John.Smith")     // "john-smith"
//	NormalizeFilename("  .pdf ")        // ""
func NormalizeFilename(filename string) string {
	name := extPattern.ReplaceAllString(strings.TrimSpace(filename), "")
	return slug.Make(name, slug.MaxLength(maxFilenameLength))
}

// ObjectKey joins already-normalized parts into a storage key.
func ObjectKey(tenantID string, c Category, name string) string {
	return tenantID + "/" + string(c) + "/" + name + "." + c.Extension()
}

// TenantPrefix returns the key prefix holding all objects of a tenant.
// The trailing slash keeps "user1" from matching "user10".
func TenantPrefix(tenantID string) string {
	return tenantID + "/"
}

// CategoryPrefix returns the key prefix holding a tenant's objects of one category.
func CategoryPrefix(tenantID string, c Category) string {
	return tenantID + "/" + string(c) + "/"
}

// PublicURL joins the public base URL and a key. Splitting the result on
// base+"/" yields the key.
func PublicURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + key
}

func validateTenant(tenantID string) error {
	if !tenantPattern.MatchString(tenantID) {
		return fmt.Errorf("%w: %q", ErrInvalidTenant, tenantID)
	}
	return nil
}

func validateCategory(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
	return nil
}

// Package slug turns arbitrary human-supplied text into URL-safe identifiers.
//
// Latin diacritics are folded to their ASCII base letters, every other
// character outside [A-Za-z0-9] becomes a separator, and runs of separators
// are collapsed and trimmed:
//
//	slug.Make("My Résumé (final)")   // "my-resume-final"
//	slug.Make("Über Größe")          // "uber-grose"
//	slug.Make("!!!")                 // ""
//
// Options adjust the output:
//
//	slug.Make("Product Name", slug.Separator("_"))       // "product_name"
//	slug.Make("Product Name", slug.Lowercase(false))     // "Product-Name"
//	slug.Make("Very long title", slug.MaxLength(9))      // "very-long"
//
// Scripts without an ASCII folding (Cyrillic, CJK, emoji) are treated as
// separators, so callers must be ready for an empty result.
package slug

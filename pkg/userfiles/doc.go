// Package userfiles stores user-owned files in a multi-tenant bucket.
//
// Every object lives under a key derived from the owning tenant, the upload
// category and a normalized filename:
//
//	{tenantID}/{category}/{normalizedFilename}.{extension}
//
// The category fixes both the extension and the content type, so callers
// cannot change the stored file type through the filename. Filenames are
// folded to lowercase ASCII slugs; when nothing is left after normalization a
// fresh lowercase ULID is used instead.
//
// # Categories
//
//   - Pictures (profile pictures) and Previews (resume previews) are images.
//     They are scaled to fit inside 600x600 without upscaling and re-encoded
//     as JPEG quality 80.
//   - Resumes are PDF documents stored byte-for-byte, with an attachment
//     Content-Disposition carrying the normalized filename.
//
// # Usage
//
//	svc, err := userfiles.New(userfiles.Config{
//		Bucket:    "resumes",
//		PublicURL: "https://cdn.example.com/resumes",
//	}, store, userfiles.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	// Once at startup, before accepting uploads.
//	if err := svc.Provision(ctx); err != nil {
//		return err
//	}
//
//	res, err := svc.Upload(ctx, "user123", userfiles.Resumes, pdf, "My Resume.pdf")
//	// res.Key == "user123/resumes/my-resume.pdf"
//	// res.URL == "https://cdn.example.com/resumes/user123/resumes/my-resume.pdf"
//
// # Provisioning
//
// Provision checks that the bucket exists. A missing bucket is created and a
// policy allowing anonymous reads under */pictures/*, */previews/* and
// */resumes/* is attached. An existing bucket is left untouched. With
// SkipBucketCheck set, Provision only logs a warning.
//
// # Errors
//
// Store failures are reported as *Error values whose Kind is one of
// ErrProvisioningFailed, ErrUploadFailed, ErrDeleteFailed or
// ErrFolderDeleteFailed. The message is stable and names the affected key,
// prefix or bucket; the store error is kept as the cause:
//
//	if errors.Is(err, userfiles.ErrUploadFailed) {
//		// respond 502
//	}
//
// Input problems are reported with ErrInvalidTenant, ErrInvalidCategory,
// ErrInvalidFilename and ErrInvalidPrefix.
//
// # Concurrency
//
// A Service holds no mutable state and is safe for concurrent use. Two
// uploads to the same key race at the store and the last write wins.
package userfiles

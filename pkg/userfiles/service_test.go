package userfiles_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumestore/pkg/events"
	"github.com/dmitrymomot/resumestore/pkg/storage"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

const (
	testBucket  = "resumes"
	testBaseURL = "https://cdn.example.com/resumes"
)

func newService(t *testing.T, store storage.Bucket, opts ...userfiles.Option) *userfiles.Service {
	t.Helper()

	svc, err := userfiles.New(userfiles.Config{
		Bucket:    testBucket,
		PublicURL: testBaseURL,
	}, store, opts...)
	require.NoError(t, err)
	return svc
}

// failingStore is a bucket whose every call fails with err.
type failingStore struct {
	err error
}

func (f *failingStore) Name() string { return testBucket }
func (f *failingStore) Exists(context.Context) (bool, error) { return false, f.err }
func (f *failingStore) Create(context.Context) error { return f.err }
func (f *failingStore) SetPolicy(context.Context, string) error { return f.err }
func (f *failingStore) Put(context.Context, string, io.Reader, int64, ...storage.Option) (*storage.FileInfo, error) {
	return nil, f.err
}
func (f *failingStore) Get(context.Context, string) (io.ReadCloser, error) { return nil, f.err }
func (f *failingStore) Stat(context.Context, string) (*storage.FileInfo, error) { return nil, f.err }
func (f *failingStore) Delete(context.Context, string) error { return f.err }
func (f *failingStore) List(context.Context, string) ([]string, error) { return nil, f.err }
func (f *failingStore) DeleteByPrefix(context.Context, string) (int, error) { return 0, f.err }

var errUnreachable = errors.New("dial tcp 127.0.0.1:9000: connection refused")

func TestNew(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory(testBucket)

	tests := []struct {
		name  string
		cfg   userfiles.Config
		store storage.Bucket
	}{
		{"missing bucket", userfiles.Config{PublicURL: testBaseURL}, store},
		{"missing url", userfiles.Config{Bucket: testBucket}, store},
		{"relative url", userfiles.Config{Bucket: testBucket, PublicURL: "/files"}, store},
		{"unsupported scheme", userfiles.Config{Bucket: testBucket, PublicURL: "ftp://host/x"}, store},
		{"bucket mismatch", userfiles.Config{Bucket: "other", PublicURL: testBaseURL}, store},
		{"nil store", userfiles.Config{Bucket: testBucket, PublicURL: testBaseURL}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, err := userfiles.New(tt.cfg, tt.store)
			require.ErrorIs(t, err, userfiles.ErrInvalidConfig)
			require.Nil(t, svc)
		})
	}
}

func TestProvision(t *testing.T) {
	t.Parallel()

	t.Run("creates missing bucket with public policy", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket)
		svc := newService(t, store)

		require.NoError(t, svc.Provision(context.Background()))

		exists, err := store.Exists(context.Background())
		require.NoError(t, err)
		assert.True(t, exists)

		want, err := storage.PublicReadPolicy(testBucket, "*/pictures/*", "*/previews/*", "*/resumes/*")
		require.NoError(t, err)
		assert.JSONEq(t, want, store.Policy())
		assert.Contains(t, store.Policy(), "arn:aws:s3:::resumes/*/resumes/*")
	})

	t.Run("existing bucket is left alone", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket, storage.WithBucketCreated())
		require.NoError(t, store.SetPolicy(context.Background(), `{"custom":true}`))
		svc := newService(t, store)

		require.NoError(t, svc.Provision(context.Background()))
		assert.Equal(t, `{"custom":true}`, store.Policy())
	})

	t.Run("skip check only warns", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		log := slog.New(slog.NewTextHandler(&logs, nil))

		store := storage.NewMemory(testBucket)
		svc, err := userfiles.New(userfiles.Config{
			Bucket:          testBucket,
			PublicURL:       testBaseURL,
			SkipBucketCheck: true,
		}, store, userfiles.WithLogger(log))
		require.NoError(t, err)

		require.NoError(t, svc.Provision(context.Background()))

		exists, err := store.Exists(context.Background())
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Equal(t, 2, strings.Count(logs.String(), "level=WARN"))
		assert.Contains(t, logs.String(), "/{pictures,previews,resumes}/*")
	})

	t.Run("store failure is a provisioning failure", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, &failingStore{err: errUnreachable})

		err := svc.Provision(context.Background())
		require.ErrorIs(t, err, userfiles.ErrProvisioningFailed)
		require.ErrorIs(t, err, errUnreachable)
		assert.Equal(t, "userfiles: provisioning failed: resumes", err.Error())
	})
}

func TestCheckBucket(t *testing.T) {
	t.Parallel()

	store := storage.NewMemory(testBucket)
	svc := newService(t, store)

	require.ErrorIs(t, svc.CheckBucket(context.Background()), storage.ErrBucketNotFound)
	require.NoError(t, store.Create(context.Background()))
	require.NoError(t, svc.CheckBucket(context.Background()))

	failing := newService(t, &failingStore{err: errUnreachable})
	err := failing.CheckBucket(context.Background())
	require.ErrorIs(t, err, errUnreachable)

	var ufErr *userfiles.Error
	assert.False(t, errors.As(err, &ufErr), "readiness errors are not tenant failures")
}

func TestUpload_Resume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory(testBucket, storage.WithBucketCreated())
	svc := newService(t, store)

	pdf := []byte("%PDF-1.4\n%%EOF")
	res, err := svc.Upload(ctx, "user123", userfiles.Resumes, pdf, "My Resume.pdf")
	require.NoError(t, err)

	assert.Equal(t, "user123/resumes/my-resume.pdf", res.Key)
	assert.Equal(t, testBaseURL+"/user123/resumes/my-resume.pdf", res.URL)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, int64(len(pdf)), res.Size)

	info, err := store.Stat(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.Equal(t, "attachment; filename=my-resume.pdf", info.ContentDisposition)
	assert.Empty(t, info.ACL)

	rc, err := store.Get(ctx, res.Key)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdf, stored)
}

func TestUpload_PictureWithoutFilename(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory(testBucket, storage.WithBucketCreated())
	svc := newService(t, store, userfiles.WithCacheControl("public, max-age=300"))

	res, err := svc.Upload(ctx, "user123", userfiles.Pictures, jpegBytes(t, 2000, 1000), "")
	require.NoError(t, err)
	require.Regexp(t, `^user123/pictures/[0-9a-z]{26}\.jpg$`, res.Key)
	assert.Equal(t, testBaseURL+"/"+res.Key, res.URL)

	info, err := store.Stat(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", info.ContentType)
	assert.Empty(t, info.ContentDisposition)
	assert.Equal(t, "public, max-age=300", info.CacheControl)

	rc, err := store.Get(ctx, res.Key)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)

	format, w, h := decodeSize(t, stored)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 600, w)
	assert.Equal(t, 300, h)
}

func TestUpload_ObjectACL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory(testBucket, storage.WithBucketCreated())
	svc := newService(t, store, userfiles.WithObjectACL(storage.ACLPublicRead))

	res, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4\n%%EOF"), "cv")
	require.NoError(t, err)

	info, err := store.Stat(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, storage.ACLPublicRead, info.ACL)
}

func TestUpload_Overwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory(testBucket, storage.WithBucketCreated())
	svc := newService(t, store)

	_, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4 first"), "cv")
	require.NoError(t, err)
	res, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4 second"), "CV.pdf")
	require.NoError(t, err)

	keys, err := store.List(ctx, "user123/")
	require.NoError(t, err)
	assert.Equal(t, []string{"user123/resumes/cv.pdf"}, keys)

	info, err := store.Stat(ctx, res.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(len("%PDF-1.4 second")), info.Size)
}

func TestUpload_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, &failingStore{err: errUnreachable})
		_, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4"), "cv")

		var uerr *userfiles.Error
		require.ErrorAs(t, err, &uerr)
		assert.Equal(t, "user123/resumes/cv.pdf", uerr.Target)
		require.ErrorIs(t, err, userfiles.ErrUploadFailed)
		require.ErrorIs(t, err, errUnreachable)
		assert.Equal(t, "userfiles: upload failed: user123/resumes/cv.pdf", err.Error())
	})

	t.Run("undecodable image leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket, storage.WithBucketCreated())
		svc := newService(t, store)

		_, err := svc.Upload(ctx, "user123", userfiles.Pictures, []byte("plain text"), "avatar")
		require.ErrorIs(t, err, userfiles.ErrUploadFailed)

		keys, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, storage.NewMemory(testBucket, storage.WithBucketCreated()))

		_, err := svc.Upload(ctx, "user/123", userfiles.Resumes, []byte("%PDF"), "cv")
		require.ErrorIs(t, err, userfiles.ErrInvalidTenant)

		_, err = svc.Upload(ctx, "user123", userfiles.Category("docs"), []byte("%PDF"), "cv")
		require.ErrorIs(t, err, userfiles.ErrInvalidCategory)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("removes the uploaded object", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket, storage.WithBucketCreated())
		svc := newService(t, store)

		res, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4"), "My Resume.pdf")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "user123", userfiles.Resumes, "my-resume"))
		_, err = store.Stat(ctx, res.Key)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("same filename as upload", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket, storage.WithBucketCreated())
		svc := newService(t, store)

		_, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4"), "My Resume.pdf")
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, "user123", userfiles.Resumes, "My Resume.pdf"))

		keys, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("never uploaded is a no-op", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, storage.NewMemory(testBucket, storage.WithBucketCreated()))
		require.NoError(t, svc.Delete(ctx, "user123", userfiles.Pictures, "ghost"))
	})

	t.Run("store reporting not found is a no-op", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, &failingStore{err: storage.ErrNotFound})
		require.NoError(t, svc.Delete(ctx, "user123", userfiles.Pictures, "ghost"))
	})

	t.Run("unreachable store", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, &failingStore{err: errUnreachable})
		err := svc.Delete(ctx, "user123", userfiles.Pictures, "avatar")
		require.ErrorIs(t, err, userfiles.ErrDeleteFailed)
		require.ErrorIs(t, err, errUnreachable)
		assert.Equal(t, "userfiles: delete failed: user123/pictures/avatar.jpg", err.Error())
	})

	t.Run("filename normalizing to empty", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, storage.NewMemory(testBucket, storage.WithBucketCreated()))
		require.ErrorIs(t, svc.Delete(ctx, "user123", userfiles.Pictures, "!!!"), userfiles.ErrInvalidFilename)
		require.ErrorIs(t, svc.Delete(ctx, "", userfiles.Pictures, "a"), userfiles.ErrInvalidTenant)
	})
}

func seed(t *testing.T, store *storage.MemoryStorage, keys ...string) {
	t.Helper()

	for _, k := range keys {
		_, err := store.Put(context.Background(), k, strings.NewReader("x"), 1)
		require.NoError(t, err)
	}
}

func TestDeleteByPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("zero matches", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, storage.NewMemory(testBucket, storage.WithBucketCreated()))
		n, err := svc.DeleteByPrefix(ctx, "nobody/")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("removes exactly the matching objects", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket, storage.WithBucketCreated())
		seed(t, store,
			"user1/pictures/a.jpg",
			"user1/resumes/a.pdf",
			"user1/resumes/b.pdf",
			"user10/resumes/a.pdf",
			"user2/resumes/a.pdf",
		)
		svc := newService(t, store)

		n, err := svc.DeleteByPrefix(ctx, "user1/resumes/")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		keys, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"user1/pictures/a.jpg", "user10/resumes/a.pdf", "user2/resumes/a.pdf"}, keys)
	})

	t.Run("empty prefix is rejected", func(t *testing.T) {
		t.Parallel()

		store := storage.NewMemory(testBucket, storage.WithBucketCreated())
		seed(t, store, "user1/pictures/a.jpg")
		svc := newService(t, store)

		for _, p := range []string{"", "/", " "} {
			_, err := svc.DeleteByPrefix(ctx, p)
			require.ErrorIs(t, err, userfiles.ErrInvalidPrefix)
		}

		keys, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, &failingStore{err: errUnreachable})
		_, err := svc.DeleteByPrefix(ctx, "user1/")
		require.ErrorIs(t, err, userfiles.ErrFolderDeleteFailed)
		require.ErrorIs(t, err, errUnreachable)
		assert.Equal(t, "userfiles: folder delete failed: resumes/user1/", err.Error())
	})
}

func TestPurge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory(testBucket, storage.WithBucketCreated())
	seed(t, store,
		"user1/pictures/a.jpg",
		"user1/previews/a.jpg",
		"user1/resumes/a.pdf",
		"user10/pictures/a.jpg",
	)
	svc := newService(t, store)

	n, err := svc.PurgeCategory(ctx, "user1", userfiles.Previews)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.PurgeTenant(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"user10/pictures/a.jpg"}, keys)

	_, err = svc.PurgeTenant(ctx, "")
	require.ErrorIs(t, err, userfiles.ErrInvalidTenant)
	_, err = svc.PurgeCategory(ctx, "user1", userfiles.Category("x"))
	require.ErrorIs(t, err, userfiles.ErrInvalidCategory)
}

func TestConcurrentUploads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory(testBucket, storage.WithBucketCreated())
	svc := newService(t, store)
	img := jpegBytes(t, 64, 32)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := svc.Upload(ctx, "user123", userfiles.Previews, img, "")
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	keys, err := store.List(ctx, userfiles.CategoryPrefix("user123", userfiles.Previews))
	require.NoError(t, err)
	assert.Len(t, keys, 20)
}

type brokenPublisher struct{}

func (brokenPublisher) Publish(context.Context, events.Event) error {
	return errors.New("broker down")
}

func TestLifecycleEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pub := events.NewMemory()
	svc := newService(t, storage.NewMemory(testBucket, storage.WithBucketCreated()), userfiles.WithPublisher(pub))

	res, err := svc.Upload(ctx, "user123", userfiles.Resumes, []byte("%PDF-1.4"), "cv")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "user123", userfiles.Resumes, "cv"))
	_, err = svc.PurgeTenant(ctx, "user123")
	require.NoError(t, err)

	// Failed operations publish nothing.
	_, err = svc.DeleteByPrefix(ctx, "")
	require.Error(t, err)

	got := pub.Events()
	require.Len(t, got, 3)

	assert.Equal(t, events.TypeFileUploaded, got[0].Type)
	assert.Equal(t, res.Key, got[0].Key)
	assert.Equal(t, res.URL, got[0].URL)
	assert.Equal(t, "user123", got[0].TenantID)
	assert.Equal(t, "resumes", got[0].Category)
	assert.Equal(t, testBucket, got[0].Bucket)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].OccurredAt.IsZero())

	assert.Equal(t, events.TypeFileDeleted, got[1].Type)
	assert.Equal(t, "user123/resumes/cv.pdf", got[1].Key)

	assert.Equal(t, events.TypeFolderDeleted, got[2].Type)
	assert.Equal(t, "user123/", got[2].Prefix)
	assert.Zero(t, got[2].Deleted)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestLifecycleEvents_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	svc := newService(t, storage.NewMemory(testBucket, storage.WithBucketCreated()),
		userfiles.WithPublisher(brokenPublisher{}),
		userfiles.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	_, err := svc.Upload(context.Background(), "user123", userfiles.Resumes, []byte("%PDF-1.4"), "cv")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "failed to publish storage event")
}

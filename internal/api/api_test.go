package api_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/resumestore/internal/api"
	"github.com/dmitrymomot/resumestore/middlewares"
	"github.com/dmitrymomot/resumestore/pkg/events"
	"github.com/dmitrymomot/resumestore/pkg/storage"
	"github.com/dmitrymomot/resumestore/pkg/userfiles"
)

const (
	testBucket  = "resumes"
	testBaseURL = "https://cdn.example.com/resumes"
	testTenant  = "user123"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	handler http.Handler
	store   storage.Bucket
	events  *events.Memory
	svc     *userfiles.Service
}

func newEnv(t *testing.T, store storage.Bucket, cfg api.Config, opts ...api.Option) *testEnv {
	t.Helper()

	pub := events.NewMemory()
	svc, err := userfiles.New(userfiles.Config{Bucket: testBucket, PublicURL: testBaseURL}, store, userfiles.WithPublisher(pub))
	require.NoError(t, err)

	cfg.JWTSecret = testSecret
	return &testEnv{
		handler: api.New(svc, cfg, opts...).Router(),
		store:   store,
		events:  pub,
		svc:     svc,
	}
}

func newMemoryEnv(t *testing.T, cfg api.Config) *testEnv {
	t.Helper()
	return newEnv(t, storage.NewMemory(testBucket, storage.WithBucketCreated()), cfg)
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := middlewares.SignToken(testSecret, subject, "", time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, req *http.Request, subject string) *httptest.ResponseRecorder {
	t.Helper()
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, subject))
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, category, uploadName, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		part, err := mw.CreateFormFile("file", uploadName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	if filename != "" {
		require.NoError(t, mw.WriteField("filename", filename))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/storage/"+category, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.RGBA{B: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// oversizedPNG returns a valid 4x4 PNG whose header claims w x h pixels.
func oversizedPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

// pdfBytes builds a minimal PDF with the given number of blank pages.
func pdfBytes(t *testing.T, pages int) []byte {
	t.Helper()

	var kids bytes.Buffer
	for i := range pages {
		fmt.Fprintf(&kids, "%d 0 R ", 3+i)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), pages),
	}
	for range pages {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

type errorBody struct {
	Error struct {
		Message   string         `json:"message"`
		Code      string         `json:"code"`
		Details   map[string]any `json:"details"`
		RequestID string         `json:"request_id"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// failingStore is a bucket whose every call fails with err.
type failingStore struct {
	err error
}

func (f *failingStore) Name() string                            { return testBucket }
func (f *failingStore) Exists(context.Context) (bool, error)    { return false, f.err }
func (f *failingStore) Create(context.Context) error            { return f.err }
func (f *failingStore) SetPolicy(context.Context, string) error { return f.err }
func (f *failingStore) Put(context.Context, string, io.Reader, int64, ...storage.Option) (*storage.FileInfo, error) {
	return nil, f.err
}
func (f *failingStore) Get(context.Context, string) (io.ReadCloser, error)      { return nil, f.err }
func (f *failingStore) Stat(context.Context, string) (*storage.FileInfo, error) { return nil, f.err }
func (f *failingStore) Delete(context.Context, string) error                    { return f.err }
func (f *failingStore) List(context.Context, string) ([]string, error)          { return nil, f.err }
func (f *failingStore) DeleteByPrefix(context.Context, string) (int, error)     { return 0, f.err }

var errUnreachable = errors.New("dial tcp 127.0.0.1:9000: connection refused")

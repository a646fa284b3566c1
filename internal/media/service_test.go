package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kodacard/kodacard-backend/pkg/config"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
)

type fakeStore struct {
	object      string
	contentType string
	body        []byte
	deleted     string
}

func (f *fakeStore) Upload(_ context.Context, object, contentType string, body io.Reader) (string, error) {
	f.object = object
	f.contentType = contentType
	buf, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.body = buf
	return "https://storage.googleapis.com/test-bucket/" + object, nil
}

func (f *fakeStore) Delete(_ context.Context, object string) error {
	f.deleted = object
	return nil
}

func newTestService(t *testing.T, maxMB int) (Service, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	svc, err := NewService(store, config.MediaConfig{MaxUploadMB: maxMB})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestUpload(t *testing.T) {
	svc, store := newTestService(t, 1)
	ctx := context.Background()

	body := strings.NewReader("fake png bytes")
	result, err := svc.Upload(ctx, 7, KindProfilePhoto, "avatar.PNG", "image/png", 14, body)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(result.URL, "https://storage.googleapis.com/test-bucket/profile-photos/7/") {
		t.Fatalf("unexpected url: %s", result.URL)
	}
	if !strings.HasSuffix(result.Object, ".png") {
		t.Fatalf("expected lowered extension, got %s", result.Object)
	}
	if store.contentType != "image/png" || string(store.body) != "fake png bytes" {
		t.Fatalf("unexpected stored object: %s %q", store.contentType, store.body)
	}
	if result.SizeBytes != 14 {
		t.Fatalf("unexpected size: %d", result.SizeBytes)
	}
}

func TestUpload_InfersContentType(t *testing.T) {
	svc, store := newTestService(t, 1)

	_, err := svc.Upload(context.Background(), 7, KindDocument, "cv.pdf", "", 10, strings.NewReader("0123456789"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if store.contentType != "application/pdf" {
		t.Fatalf("expected inferred pdf content type, got %q", store.contentType)
	}
}

func TestUpload_Rejections(t *testing.T) {
	svc, _ := newTestService(t, 1)
	ctx := context.Background()

	cases := []struct {
		name        string
		kind        Kind
		filename    string
		contentType string
		size        int64
	}{
		{"unknown kind", Kind("malware"), "x.bin", "application/octet-stream", 1},
		{"empty body", KindDocument, "x.pdf", "application/pdf", 0},
		{"over cap", KindDocument, "x.pdf", "application/pdf", 2 << 20},
		{"non-image photo", KindProfilePhoto, "x.pdf", "application/pdf", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, 7, tc.kind, tc.filename, tc.contentType, tc.size, strings.NewReader("x"))
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	svc, store := newTestService(t, 1)

	if err := svc.Delete(context.Background(), 7, false, "documents/7/file.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.deleted != "documents/7/file.pdf" {
		t.Fatalf("unexpected deleted object: %s", store.deleted)
	}

	err := svc.Delete(context.Background(), 7, false, "  ")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelete_RefusesForeignObjects(t *testing.T) {
	svc, store := newTestService(t, 1)
	ctx := context.Background()

	err := svc.Delete(ctx, 8, false, "profile-photos/7/20260830-aaaa.png")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if store.deleted != "" {
		t.Fatalf("store must not be reached, deleted %q", store.deleted)
	}
}

func TestDelete_AdminBypassesOwnership(t *testing.T) {
	svc, store := newTestService(t, 1)

	if err := svc.Delete(context.Background(), 8, true, "profile-photos/7/20260830-aaaa.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.deleted != "profile-photos/7/20260830-aaaa.png" {
		t.Fatalf("unexpected deleted object: %s", store.deleted)
	}
}

func TestDelete_RejectsMalformedNames(t *testing.T) {
	svc, store := newTestService(t, 1)
	ctx := context.Background()

	for _, object := range []string{"file.pdf", "documents/7", "secrets/7/x.pdf"} {
		err := svc.Delete(ctx, 7, false, object)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", object, err)
		}
	}
	if store.deleted != "" {
		t.Fatalf("store must not be reached, deleted %q", store.deleted)
	}
}

package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kodacard/kodacard-backend/pkg/config"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
)

// Kind labels what a blob is used for; it becomes the object prefix.
type Kind string

const (
	KindProfilePhoto Kind = "profile-photos"
	KindDocument     Kind = "documents"
	KindPortfolio    Kind = "portfolio"
	KindOGImage      Kind = "og-images"
)

var validKinds = map[Kind]bool{
	KindProfilePhoto: true,
	KindDocument:     true,
	KindPortfolio:    true,
	KindOGImage:      true,
}

// imageOnlyKinds may only hold browser-renderable images.
var imageOnlyKinds = map[Kind]bool{
	KindProfilePhoto: true,
	KindPortfolio:    true,
	KindOGImage:      true,
}

// UploadResult is the stored object reference returned to the client.
type UploadResult struct {
	URL         string `json:"url"`
	Object      string `json:"object"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

type objectStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
}

// Service streams uploads into object storage. The rest of the system only
// ever sees the returned URL strings.
type Service interface {
	Upload(ctx context.Context, actorID uint64, kind Kind, filename, contentType string, size int64, body io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, actorID uint64, admin bool, object string) error
}

type service struct {
	store    objectStore
	maxBytes int64
}

// NewService constructs the media service.
func NewService(store objectStore, cfg config.MediaConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 20
	}
	return &service{store: store, maxBytes: int64(maxMB) << 20}, nil
}

func (s *service) Upload(ctx context.Context, actorID uint64, kind Kind, filename, contentType string, size int64, body io.Reader) (*UploadResult, error) {
	if !validKinds[kind] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown media kind")
	}
	if size <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty upload")
	}
	if size > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("upload exceeds the %d MB limit", s.maxBytes>>20))
	}

	ext := strings.ToLower(path.Ext(filename))
	if contentType == "" && ext != "" {
		contentType = mime.TypeByExtension(ext)
	}
	if imageOnlyKinds[kind] && !strings.HasPrefix(contentType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only images are accepted for this kind")
	}

	object := fmt.Sprintf("%s/%d/%s%s%s",
		kind, actorID, time.Now().UTC().Format("20060102"), "-"+uuid.NewString(), ext)

	// The size cap was checked against the declared length; the reader is
	// clamped too so a lying client cannot stream past it.
	url, err := s.store.Upload(ctx, object, contentType, io.LimitReader(body, s.maxBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store media object")
	}

	return &UploadResult{
		URL:         url,
		Object:      object,
		ContentType: contentType,
		SizeBytes:   size,
	}, nil
}

func (s *service) Delete(ctx context.Context, actorID uint64, admin bool, object string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object name is required")
	}
	// Objects are named kind/ownerID/file; the owner segment gates who may
	// remove them.
	segs := strings.Split(object, "/")
	if len(segs) < 3 || !validKinds[Kind(segs[0])] {
		return pkgerrors.New(pkgerrors.CodeValidation, "malformed object name")
	}
	if !admin && segs[1] != strconv.FormatUint(actorID, 10) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "object not owned by caller")
	}
	if err := s.store.Delete(ctx, object); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete media object")
	}
	return nil
}

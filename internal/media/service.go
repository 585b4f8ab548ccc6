package media

import (
	"bytes"
	"context"
	"fmt"
	"io"

	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

// Kind tells the image host what an upload is for.
type Kind string

const (
	KindPaymentProof Kind = "payment-proof"
	KindProductImage Kind = "product"
	KindLogo         Kind = "logo"
)

// Uploader stores a file on the image host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// File is an incoming upload.
type File struct {
	Filename string
	Body     io.Reader
}

// Service validates images and hands them to the configured host.
type Service interface {
	UploadImage(ctx context.Context, kind Kind, file File) (string, error)
}

type service struct {
	uploader Uploader
	maxBytes int64
	logg     *logger.Logger
}

func NewService(uploader Uploader, maxBytes int64, logg *logger.Logger) (Service, error) {
	if uploader == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{uploader: uploader, maxBytes: maxBytes, logg: logg}, nil
}

// UploadImage rejects non-images and files above the size cap with
// VALIDATION_ERROR. Host failures come back as DEPENDENCY_ERROR.
func (s *service) UploadImage(ctx context.Context, kind Kind, file File) (string, error) {
	if file.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, s.maxBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file too large").
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}

	mimeType, ext, err := sniffImage(data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	name := string(kind) + "-" + cleanFilename(file.Filename, ext)
	url, err := s.uploader.Upload(ctx, name, mimeType, bytes.NewReader(data))
	if err != nil {
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{"kind": string(kind), "content_type": mimeType}), "media.upload_failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image upload failed")
	}
	return url, nil
}

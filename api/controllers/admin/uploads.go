package admin

import (
	"errors"
	"mime/multipart"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/essyessentials/storefront-backend/internal/media"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
)

const (
	multipartMemory   = 8 << 20
	maxImagesPerPost  = 10
	uploadParallelism = 3
)

// parseImageForm bounds the body and parses the multipart form. The caller
// must call the returned cleanup.
func parseImageForm(w http.ResponseWriter, r *http.Request, maxBytes int64, files int) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes*int64(files)+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, pkgerrors.New(pkgerrors.CodeValidation, "upload too large").
				WithDetails(map[string]any{"max_bytes_per_file": maxBytes})
		}
		return func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// uploadAll uploads headers concurrently and returns the URLs in the order
// the files were sent.
func uploadAll(r *http.Request, svc media.Service, kind media.Kind, headers []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, len(headers))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(uploadParallelism)
	for i, fh := range headers {
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open upload")
			}
			defer f.Close()
			url, err := svc.UploadImage(ctx, kind, media.File{Filename: fh.Filename, Body: f})
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

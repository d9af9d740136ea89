package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"
)

// Archive writes every photo of a submission into a zip. Photos whose blob
// is missing are skipped. It returns the number of files written.
func (s *SubmissionService) Archive(ctx context.Context, id string, w io.Writer) (int, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	zw := zip.NewWriter(w)
	written := 0
	for i, p := range sub.Photos {
		data, _, err := s.blobs.Get(ctx, p.FilePath)
		if err != nil {
			log.Printf("Warning: archive %s: skip %s: %v", id, p.FilePath, err)
			continue
		}
		name := fmt.Sprintf("%02d_%s", i+1, path.Base(p.FileName))
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Store,
			Modified: time.Now().UTC(),
		})
		if err != nil {
			return written, err
		}
		if _, err := fw.Write(data); err != nil {
			return written, err
		}
		written++
	}
	return written, zw.Close()
}

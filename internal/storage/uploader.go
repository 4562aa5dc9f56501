package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jung602/roro/internal/route"
)

// ErrUpload marks a per-file failure. Sibling uploads in the same batch
// are unaffected.
var ErrUpload = errors.New("image upload failed")

// Progress weighting: the client-side compression phase contributes less
// to the reported percentage than the transfer itself.
const (
	compressWeight = 0.3
	uploadWeight   = 0.7
)

// Uploader fans a batch of files out to the object store concurrently
// and aggregates per-file progress into one weighted percentage.
type Uploader struct {
	store ObjectStore
}

func NewUploader(store ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// UploadAll uploads every file under prefix. Successful uploads are
// returned in input order; each failed file contributes an ErrUpload to
// the joined error without aborting its siblings.
func (u *Uploader) UploadAll(ctx context.Context, prefix string, files [][]byte, onProgress func(pct float64)) ([]route.Image, error) {
	if len(files) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		done     float64
		images   = make([]route.Image, len(files))
		uploaded = make([]bool, len(files))
		errs     = make([]error, len(files))
		wg       sync.WaitGroup
	)

	report := func(fraction float64) {
		if onProgress == nil {
			return
		}
		mu.Lock()
		done += fraction
		pct := done / float64(len(files)) * 100
		mu.Unlock()
		onProgress(pct)
	}

	for i, data := range files {
		wg.Add(1)
		go func(i int, data []byte) {
			defer wg.Done()

			// compression is out of scope here; the phase completes
			// immediately but still carries its progress weight
			report(compressWeight)

			key := prefix + "-" + strconv.Itoa(i)
			url, path, err := u.store.Put(ctx, key, data)
			if err != nil {
				errs[i] = fmt.Errorf("%w: file %d: %v", ErrUpload, i, err)
				return
			}
			images[i] = route.Image{URL: url, Path: path}
			uploaded[i] = true
			report(uploadWeight)
		}(i, data)
	}
	wg.Wait()

	out := make([]route.Image, 0, len(files))
	for i, ok := range uploaded {
		if ok {
			out = append(out, images[i])
		}
	}
	return out, errors.Join(errs...)
}

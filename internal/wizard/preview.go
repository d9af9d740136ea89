package wizard

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Preview is the handle a front-end uses to display a photo that has not
// been uploaded yet. It is acquired when the photo is added and released
// exactly once, when the photo is removed or the collection is closed.
type Preview struct {
	id       string
	released atomic.Bool
	release  func(id string)
}

func acquirePreview(release func(id string)) *Preview {
	return &Preview{id: uuid.NewString(), release: release}
}

// ID identifies the preview within its collection.
func (p *Preview) ID() string {
	return p.id
}

// Released reports whether the handle was given back.
func (p *Preview) Released() bool {
	return p.released.Load()
}

// Release gives the handle back. Releasing twice is an error.
func (p *Preview) Release() error {
	if !p.released.CompareAndSwap(false, true) {
		return ErrPreviewReleased
	}
	if p.release != nil {
		p.release(p.id)
	}
	return nil
}

package wizard

import (
	"fmt"
	"strings"
)

// MaxPhotos is how many photos one submission may carry.
const MaxPhotos = 10

// PhotoAttr names the editable metadata of an attachment.
type PhotoAttr string

const (
	AttrCaption PhotoAttr = "caption"
	AttrYear    PhotoAttr = "year"
)

// File is a photo as picked by the user.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Attachment is a pending photo owned by a Photos collection.
type Attachment struct {
	File
	Caption string
	Year    string
	preview *Preview
}

// Complete reports whether caption and year are both filled in.
func (a *Attachment) Complete() bool {
	return strings.TrimSpace(a.Caption) != "" && strings.TrimSpace(a.Year) != ""
}

// PhotoView is the read-only shape of an attachment for the UI.
type PhotoView struct {
	Index     int    `json:"index"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	Size      int    `json:"size"`
	Caption   string `json:"caption"`
	Year      string `json:"year"`
	PreviewID string `json:"previewId"`
	Complete  bool   `json:"complete"`
}

// PendingPhoto is the copy of an attachment handed to the commit pipeline.
type PendingPhoto struct {
	FileName string
	MimeType string
	Data     []byte
	Caption  string
	Year     string
}

// Photos is the ordered list of pending attachments. It owns the preview
// handle of every element: removing an element or closing the collection
// releases them. Photos is not safe for concurrent use.
type Photos struct {
	items  []*Attachment
	live   map[string]*Attachment
	closed bool
}

func NewPhotos() *Photos {
	return &Photos{live: make(map[string]*Attachment)}
}

// Add appends a photo with empty caption and year and returns its index.
// Capacity is checked before the file type.
func (p *Photos) Add(f File) (int, error) {
	if p.closed {
		return -1, ErrClosed
	}
	if len(p.items) >= MaxPhotos {
		return -1, ErrCapacityExceeded
	}
	if !strings.HasPrefix(f.MimeType, "image/") {
		return -1, fmt.Errorf("%w: %q", ErrUnsupportedType, f.MimeType)
	}
	a := &Attachment{File: f}
	a.preview = acquirePreview(func(id string) { delete(p.live, id) })
	p.live[a.preview.ID()] = a
	p.items = append(p.items, a)
	return len(p.items) - 1, nil
}

// Update overwrites caption or year in place.
func (p *Photos) Update(index int, attr PhotoAttr, value string) error {
	a, err := p.at(index)
	if err != nil {
		return err
	}
	switch attr {
	case AttrCaption:
		a.Caption = value
	case AttrYear:
		a.Year = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPhotoAttr, attr)
	}
	return nil
}

// Remove releases the element's preview and drops it, keeping the order of
// the remaining photos.
func (p *Photos) Remove(index int) error {
	a, err := p.at(index)
	if err != nil {
		return err
	}
	if err := a.preview.Release(); err != nil {
		return err
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	return nil
}

// Len is the number of pending photos.
func (p *Photos) Len() int {
	return len(p.items)
}

// Complete reports whether there is at least one photo and all of them
// carry a caption and a year.
func (p *Photos) Complete() bool {
	return len(p.items) > 0 && len(p.Incomplete()) == 0
}

// Incomplete returns the indices of photos missing caption or year.
func (p *Photos) Incomplete() []int {
	var out []int
	for i, a := range p.items {
		if !a.Complete() {
			out = append(out, i)
		}
	}
	return out
}

// Views lists the photos for display.
func (p *Photos) Views() []PhotoView {
	out := make([]PhotoView, len(p.items))
	for i, a := range p.items {
		out[i] = PhotoView{
			Index:     i,
			FileName:  a.Name,
			MimeType:  a.MimeType,
			Size:      len(a.Data),
			Caption:   a.Caption,
			Year:      a.Year,
			PreviewID: a.preview.ID(),
			Complete:  a.Complete(),
		}
	}
	return out
}

// Pending copies the photos for persistence. The blobs are shared, not
// duplicated; the collection keeps its previews.
func (p *Photos) Pending() []PendingPhoto {
	out := make([]PendingPhoto, len(p.items))
	for i, a := range p.items {
		out[i] = PendingPhoto{
			FileName: a.Name,
			MimeType: a.MimeType,
			Data:     a.Data,
			Caption:  a.Caption,
			Year:     a.Year,
		}
	}
	return out
}

// Preview returns the file behind a live preview handle.
func (p *Photos) Preview(id string) (File, error) {
	a, ok := p.live[id]
	if !ok {
		return File{}, ErrPreviewNotFound
	}
	return a.File, nil
}

// LivePreviews is the number of handles not yet released.
func (p *Photos) LivePreviews() int {
	return len(p.live)
}

// Close releases every remaining preview and drops the photos. It is the
// teardown after a successful submission or an abandoned session.
func (p *Photos) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for _, a := range p.items {
		_ = a.preview.Release()
	}
	p.items = nil
}

func (p *Photos) at(index int) (*Attachment, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if index < 0 || index >= len(p.items) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return p.items[index], nil
}

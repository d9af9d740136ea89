package wizard

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func jpeg(name string) File {
	return File{Name: name, MimeType: "image/jpeg", Data: []byte(name)}
}

func TestAddRejectsNonImage(t *testing.T) {
	p := NewPhotos()
	if _, err := p.Add(File{Name: "a.pdf", MimeType: "application/pdf"}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if p.Len() != 0 || p.LivePreviews() != 0 {
		t.Fatal("rejected file must not be kept")
	}
}

func TestEleventhPhotoExceedsCapacity(t *testing.T) {
	p := NewPhotos()
	for i := 0; i < MaxPhotos; i++ {
		if _, err := p.Add(jpeg(fmt.Sprintf("%d.jpg", i))); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if _, err := p.Add(jpeg("11.jpg")); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	// capacity wins over type
	if _, err := p.Add(File{Name: "x.txt", MimeType: "text/plain"}); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("capacity must be checked first, got %v", err)
	}
	if p.Len() != MaxPhotos {
		t.Fatalf("collection size changed to %d", p.Len())
	}
}

func TestUpdateDoesNotTrim(t *testing.T) {
	p := NewPhotos()
	i, _ := p.Add(jpeg("a.jpg"))
	if err := p.Update(i, AttrCaption, "  praia  "); err != nil {
		t.Fatal(err)
	}
	if got := p.Views()[0].Caption; got != "  praia  " {
		t.Fatalf("caption altered: %q", got)
	}
	if err := p.Update(3, AttrYear, "2020"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := p.Update(i, PhotoAttr("place"), "x"); !errors.Is(err, ErrUnknownPhotoAttr) {
		t.Fatalf("expected ErrUnknownPhotoAttr, got %v", err)
	}
}

func TestRemoveReleasesOneHandleAndShifts(t *testing.T) {
	p := NewPhotos()
	for _, n := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p.Add(jpeg(n))
	}
	removed := p.items[1].preview

	if err := p.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed.Released() {
		t.Fatal("removed preview not released")
	}
	if p.LivePreviews() != 2 {
		t.Fatalf("expected 2 live previews, got %d", p.LivePreviews())
	}
	var names []string
	for _, v := range p.Views() {
		names = append(names, v.FileName)
	}
	if diff := cmp.Diff([]string{"a.jpg", "c.jpg"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if _, err := p.Preview(removed.ID()); !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("released preview still served: %v", err)
	}
	if err := removed.Release(); !errors.Is(err, ErrPreviewReleased) {
		t.Fatalf("double release must fail, got %v", err)
	}
	if err := p.Remove(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestPreviewServesFile(t *testing.T) {
	p := NewPhotos()
	p.Add(jpeg("a.jpg"))
	id := p.Views()[0].PreviewID

	f, err := p.Preview(id)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if f.Name != "a.jpg" || string(f.Data) != "a.jpg" {
		t.Fatalf("unexpected file %+v", f)
	}
}

func TestCloseReleasesEverythingOnce(t *testing.T) {
	p := NewPhotos()
	p.Add(jpeg("a.jpg"))
	p.Add(jpeg("b.jpg"))
	handles := []*Preview{p.items[0].preview, p.items[1].preview}

	p.Close()
	p.Close()

	for i, h := range handles {
		if !h.Released() {
			t.Fatalf("handle %d not released", i)
		}
	}
	if p.LivePreviews() != 0 || p.Len() != 0 {
		t.Fatal("closed collection still holds photos")
	}
	if _, err := p.Add(jpeg("c.jpg")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestPendingSharesBlobs(t *testing.T) {
	p := NewPhotos()
	i, _ := p.Add(jpeg("a.jpg"))
	p.Update(i, AttrCaption, "Praia")
	p.Update(i, AttrYear, "2018")

	want := []PendingPhoto{{FileName: "a.jpg", MimeType: "image/jpeg", Data: []byte("a.jpg"), Caption: "Praia", Year: "2018"}}
	if diff := cmp.Diff(want, p.Pending()); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
	if p.LivePreviews() != 1 {
		t.Fatal("snapshot must not release previews")
	}
}

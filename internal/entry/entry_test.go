package entry

import (
	"strings"
	"testing"
)

func TestPreviewShortText(t *testing.T) {
	got := Preview(NewText("hello world"))
	if got != "hello world" {
		t.Errorf("expected full text as preview, got %q", got)
	}
}

func TestPreviewLongText(t *testing.T) {
	long := strings.Repeat("a", 250)
	got := Preview(NewText(long))

	runes := []rune(got)
	if len(runes) != PreviewLimit+1 {
		t.Fatalf("expected %d runes, got %d", PreviewLimit+1, len(runes))
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	if string(runes[:PreviewLimit]) != strings.Repeat("a", PreviewLimit) {
		t.Errorf("preview body does not match input prefix")
	}
}

func TestPreviewMultibyteText(t *testing.T) {
	long := strings.Repeat("日", 150)
	got := Preview(NewText(long))
	if n := len([]rune(got)); n != PreviewLimit+1 {
		t.Errorf("expected %d runes for multibyte input, got %d", PreviewLimit+1, n)
	}
}

func TestPreviewImage(t *testing.T) {
	c := NewImage(ImageData{Width: 640, Height: 480, Format: "png"})
	if got := Preview(c); got != "[Image 640x480]" {
		t.Errorf("unexpected image preview %q", got)
	}
}

func TestPreviewFiles(t *testing.T) {
	one := NewFileList([]FileItem{{Path: "/tmp/a"}})
	if got := Preview(one); got != "[1 file]" {
		t.Errorf("unexpected single-file preview %q", got)
	}
	three := NewFileList([]FileItem{{Path: "/a"}, {Path: "/b"}, {Path: "/c"}})
	if got := Preview(three); got != "[3 files]" {
		t.Errorf("unexpected file-list preview %q", got)
	}
}

func TestPreviewNeverEmpty(t *testing.T) {
	cases := []Content{
		NewText(""),
		NewHTML(""),
		NewImage(ImageData{}),
		NewFileList(nil),
		NewCustom("blob", nil),
		{},
	}
	for _, c := range cases {
		if Preview(c) == "" {
			t.Errorf("empty preview for content type %q", c.Type)
		}
	}
}

func TestNewAssignsIDAndPreview(t *testing.T) {
	a := New(NewText("x"))
	b := New(NewText("x"))
	if a.ID == b.ID {
		t.Error("expected distinct ids")
	}
	if a.PreviewText != "x" {
		t.Errorf("unexpected preview %q", a.PreviewText)
	}
	if a.CapturedAt.IsZero() {
		t.Error("expected capture time to be set")
	}
	if a.CapturedAt.Nanosecond() != 0 {
		t.Error("expected capture time truncated to whole seconds")
	}
}

func TestAddRemoveTags(t *testing.T) {
	e := New(NewText("tagged"))

	e.AddTags("work", "todo")
	e.AddTags("todo", "later") // overlapping add must not duplicate
	want := []string{"work", "todo", "later"}
	if len(e.Tags) != len(want) {
		t.Fatalf("expected tags %v, got %v", want, e.Tags)
	}
	for i, tag := range want {
		if e.Tags[i] != tag {
			t.Fatalf("expected tags %v, got %v", want, e.Tags)
		}
	}

	e.RemoveTags("todo", "later", "absent")
	if len(e.Tags) != 1 || e.Tags[0] != "work" {
		t.Errorf("expected [work], got %v", e.Tags)
	}
}

func TestAddThenRemoveRestoresOriginal(t *testing.T) {
	e := New(NewText("x"))
	e.AddTags("keep")

	e.AddTags("a", "b")
	e.RemoveTags("a", "b")
	if len(e.Tags) != 1 || e.Tags[0] != "keep" {
		t.Errorf("expected original tag set restored, got %v", e.Tags)
	}
}

func TestContentSize(t *testing.T) {
	if got := NewText("abcd").Size(); got != 4 {
		t.Errorf("text size = %d, want 4", got)
	}
	img := NewImage(ImageData{Data: make([]byte, 10)})
	if got := img.Size(); got != 10 {
		t.Errorf("image size = %d, want 10", got)
	}
	files := NewFileList([]FileItem{{Size: 3}, {Size: 7}})
	if got := files.Size(); got != 10 {
		t.Errorf("file-list size = %d, want 10", got)
	}
}

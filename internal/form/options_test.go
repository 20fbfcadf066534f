package form

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/rezai-admin/internal/domain"
	"github.com/felixgeelhaar/rezai-admin/internal/notify"
	"github.com/felixgeelhaar/rezai-admin/internal/upload"
)

type stubUploader struct {
	results map[int]upload.Result
	got     map[int]string
}

func (s *stubUploader) UploadFiles(_ context.Context, paths map[int]string) map[int]upload.Result {
	s.got = paths
	return s.results
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		spec, label, icon string
	}{
		{"Vegan", "Vegan", ""},
		{" Vegan = ./vegan.png ", "Vegan", "./vegan.png"},
		{"Keto=https://cdn.example.com/k.png", "Keto", "https://cdn.example.com/k.png"},
		{"=x.png", "", "x.png"},
		{"1+1=2", "1+1=2", ""},
		{"a=b=https://cdn.example.com/i.png?v=1", "a=b", "https://cdn.example.com/i.png?v=1"},
		{"Ratio=3.5", "Ratio=3.5", ""},
		{"x=", "x=", ""},
	}
	for _, tt := range tests {
		label, icon := ParseOption(tt.spec)
		assert.Equal(t, tt.label, label, tt.spec)
		assert.Equal(t, tt.icon, icon, tt.spec)
	}
}

func TestFormatOption(t *testing.T) {
	assert.Equal(t, "A", FormatOption(domain.Option{Label: "A"}))
	assert.Equal(t, "A=https://x/a.png", FormatOption(domain.Option{Label: "A", Icon: "https://x/a.png"}))
}

func TestParseOptionExistingFile(t *testing.T) {
	icon := filepath.Join(t.TempDir(), "icon")
	require.NoError(t, os.WriteFile(icon, []byte("img"), 0o600))

	label, got := ParseOption("Vegan=" + icon)
	assert.Equal(t, "Vegan", label)
	assert.Equal(t, icon, got)
}

func TestFormatParseRoundTripKeepsEquals(t *testing.T) {
	for _, o := range []domain.Option{
		{Label: "1+1=2"},
		{Label: "x=y", Icon: "https://cdn.example.com/x.png"},
		{Label: "Keto"},
	} {
		label, icon := ParseOption(FormatOption(o))
		assert.Equal(t, o, domain.Option{Label: label, Icon: icon})
	}
}

func TestApplyOptions(t *testing.T) {
	f := NewQuestionForm(nil)
	f.OpenCreate()

	local := ApplyOptions(f, []string{"A=./a.png", "B=https://cdn/b.png", "C"})
	assert.Equal(t, map[int]string{0: "./a.png"}, local)

	opts := f.Fields().Options
	require.Len(t, opts, 3)
	assert.Equal(t, domain.Option{Label: "A"}, opts[0])
	assert.Equal(t, domain.Option{Label: "B", Icon: "https://cdn/b.png"}, opts[1])
	assert.Equal(t, domain.Option{Label: "C"}, opts[2])
}

func TestUploadIconsIsolatesFailures(t *testing.T) {
	rec := &notify.Recorder{}
	f := NewQuestionForm(rec)
	f.OpenCreate()
	paths := ApplyOptions(f, []string{"A=./a.png", "B=./b.png"})

	up := &stubUploader{results: map[int]upload.Result{
		0: {URL: "https://cdn/a.png"},
		1: {Err: stderrors.New("boom")},
	}}
	failed := UploadIcons(context.Background(), f, up, paths)

	assert.Equal(t, 1, failed)
	assert.Equal(t, paths, up.got)
	assert.False(t, f.Uploading())

	opts := f.Fields().Options
	assert.Equal(t, "https://cdn/a.png", opts[0].Icon)
	assert.Empty(t, opts[1].Icon)
	assert.ElementsMatch(t, []string{MsgIconUploaded, MsgUploadFailed}, rec.Messages())
}

func TestUploadIconsNothingToDo(t *testing.T) {
	f := NewQuestionForm(nil)
	f.OpenCreate()
	assert.Zero(t, UploadIcons(context.Background(), f, &stubUploader{}, nil))
}

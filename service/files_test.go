package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(name, contentType string, data []byte) UploadInput {
	return UploadInput{
		Filename:    name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUpload(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("Alice", "a@example.com")

	files, err := f.library.Upload(ctx, alice.UserID, []UploadInput{
		input("pixel.png", "application/octet-stream", pngHeader),
		input("notes.txt", "text/plain", []byte("hello there")),
	})
	require.NoError(t, err)
	require.Len(t, files, 2)

	png := files[0]
	assert.Equal(t, "pixel.png", png.DisplayName)
	assert.Equal(t, "image/png", png.ContentType)
	assert.Equal(t, "image", png.MimeCategory)
	assert.Equal(t, alice.UserID, png.UserID)
	assert.NotEmpty(t, png.PublicToken)
	assert.Nil(t, png.LinkExpiresAt)
	assert.Equal(t, t0, png.UploadedAt)
	assert.Equal(t, pngHeader, f.gateway.objects[png.StorageKey])

	assert.Equal(t, "text", files[1].MimeCategory)
	assert.NotEqual(t, png.PublicToken, files[1].PublicToken)

	mine, err := f.library.ListMine(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := uuid.New()
	big := input("big.bin", "", make([]byte, 10))
	big.Size = 51 << 20
	many := make([]UploadInput, MaxFilesPerUpload+1)
	for i := range many {
		many[i] = input(fmt.Sprintf("f%d.txt", i), "text/plain", []byte("x"))
	}

	tests := []struct {
		name   string
		inputs []UploadInput
	}{
		{"nothing", nil},
		{"blank name", []UploadInput{input("  ", "text/plain", []byte("x"))}},
		{"too large", []UploadInput{input("ok.txt", "text/plain", []byte("x")), big}},
		{"too many files", many},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.library.Upload(ctx, owner, tt.inputs)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
	assert.Empty(t, f.gateway.objects)
}

func TestMaxRequestBytes(t *testing.T) {
	f := newFixture()
	assert.Equal(t, int64(MaxFilesPerUpload*(50<<20)+(1<<20)), f.library.MaxRequestBytes())
}

func TestUpload_StorageFailure(t *testing.T) {
	f := newFixture()
	f.gateway.fail = true

	_, err := f.library.Upload(context.Background(), uuid.New(), []UploadInput{
		input("notes.txt", "text/plain", []byte("hello")),
	})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, f.files.files)
}

func TestUpload_OpenFailure(t *testing.T) {
	f := newFixture()
	in := input("notes.txt", "text/plain", nil)
	in.Open = func() (io.ReadCloser, error) { return nil, errors.New("disk gone") }

	_, err := f.library.Upload(context.Background(), uuid.New(), []UploadInput{in})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk gone"))
}

func TestMimeCategory(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", "image"},
		{"IMAGE/JPEG", "image"},
		{"video/mp4", "video"},
		{"audio/mpeg", "audio"},
		{"application/pdf", "pdf"},
		{"text/plain; charset=utf-8", "text"},
		{"application/json", "text"},
		{"application/zip", "archive"},
		{"application/x-7z-compressed", "archive"},
		{"application/msword", "document"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "document"},
		{"application/vnd.oasis.opendocument.text", "document"},
		{"application/octet-stream", "other"},
		{"", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, MimeCategory(tt.contentType))
		})
	}
}

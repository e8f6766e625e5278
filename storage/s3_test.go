package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(endpoint string) *s3.Client {
	return s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
}

func TestDisposition_Header(t *testing.T) {
	tests := []struct {
		name string
		d    Disposition
		want string
	}{
		{"inline", Disposition{Kind: Inline, Filename: "photo.png"}, `inline; filename="photo.png"`},
		{"attachment", Disposition{Kind: Attachment, Filename: "report.pdf"}, `attachment; filename="report.pdf"`},
		{"quoted name", Disposition{Kind: Attachment, Filename: `a "b".txt`}, `attachment; filename="a \"b\".txt"`},
		{"newline stripped", Disposition{Kind: Inline, Filename: "a\r\nb.txt"}, `inline; filename="ab.txt"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Header())
		})
	}
}

func TestS3Gateway_Presign(t *testing.T) {
	g := NewS3Gateway(newTestClient("http://localhost:9000"), "bucket")

	raw, err := g.Presign(context.Background(), "files/abc.pdf",
		Disposition{Kind: Attachment, Filename: "report.pdf"}, time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/bucket/files/abc.pdf", u.Path)
	q := u.Query()
	assert.Equal(t, `attachment; filename="report.pdf"`, q.Get("response-content-disposition"))
	assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
}

func TestS3Gateway_GetStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/bucket/files/abc.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	g := NewS3Gateway(newTestClient(srv.URL), "bucket")
	body, err := g.GetStream(context.Background(), "files/abc.txt")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestNewObjectKey(t *testing.T) {
	k1 := newObjectKey("Report.PDF")
	k2 := newObjectKey("Report.PDF")
	assert.True(t, strings.HasPrefix(k1, "files/"))
	assert.True(t, strings.HasSuffix(k1, ".pdf"))
	assert.NotEqual(t, k1, k2)

	assert.NotContains(t, newObjectKey("noext"), ".")
	assert.False(t, strings.HasSuffix(newObjectKey("weird.a b"), " b"))
}

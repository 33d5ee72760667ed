package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func newFakeGmail(t *testing.T) *gmail.Service {
	t.Helper()

	attachments := map[string]string{
		"a1": "%PDF-1.4 jane",
		"a3": "PK\x03\x04 jane docx",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/gmail/v1/users/me/messages":
			assert.Equal(t, `subject:"Backend Role" has:attachment`, r.URL.Query().Get("q"))
			json.NewEncoder(w).Encode(map[string]any{
				"messages": []map[string]string{{"id": "m1"}},
			})
		case "/gmail/v1/users/me/messages/m1":
			json.NewEncoder(w).Encode(map[string]any{
				"id": "m1",
				"payload": map[string]any{
					"headers": []map[string]string{{"name": "From", "value": `"Jane Doe" <jane@example.com>`}},
					"parts": []map[string]any{
						{"filename": "resume.pdf", "body": map[string]string{"attachmentId": "a1"}},
						{"filename": "photo.png", "body": map[string]string{"attachmentId": "a2"}},
						{
							"mimeType": "multipart/mixed",
							"parts": []map[string]any{
								{"filename": "cv.docx", "body": map[string]string{"attachmentId": "a3"}},
							},
						},
					},
				},
			})
		case "/gmail/v1/users/me/messages/m1/attachments/a1", "/gmail/v1/users/me/messages/m1/attachments/a3":
			id := filepath.Base(r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{
				"data": base64.URLEncoding.EncodeToString([]byte(attachments[id])),
			})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return svc
}

func TestFetchAttachments_SavesResumes(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	gh := NewGmailHandlerWithService(newFakeGmail(t), NewFileHandler(uploads))

	paths, err := gh.FetchAttachments(context.Background(), "Backend Role")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(uploads, "JaneDoe_resume.pdf"),
		filepath.Join(uploads, "JaneDoe_cv.docx"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 jane", string(data))
}

func TestFetchResumes_ReplacesPreviousDownloads(t *testing.T) {
	uploads := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(uploads)
	_, err := fh.SaveUploadedFile("Old_resume.pdf", strings.NewReader("%PDF-1.4 old"))
	require.NoError(t, err)

	gh := NewGmailHandlerWithService(newFakeGmail(t), fh)
	resumes, err := gh.FetchResumes(context.Background(), "Backend Role")
	require.NoError(t, err)

	require.Len(t, resumes, 2)
	assert.Equal(t, "JaneDoe_cv.docx", resumes[0].Name)
	assert.Equal(t, MIMEDOCX, resumes[0].ContentType)
	assert.Equal(t, "JaneDoe_resume.pdf", resumes[1].Name)
	assert.Equal(t, MIMEPDF, resumes[1].ContentType)
	assert.Equal(t, []byte("%PDF-1.4 jane"), resumes[1].Data)

	_, err = os.Stat(filepath.Join(uploads, "Old_resume.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractSenderName(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"Jane Doe <jane@example.com>", "JaneDoe"},
		{`"John Q Public" <jq@example.com>`, "JohnQPublic"},
		{"solo@example.com", "solo"},
		{"weird", "Unknown"},
	}

	for _, tt := range tests {
		msg := &gmail.Message{Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{{Name: "From", Value: tt.from}},
		}}
		assert.Equal(t, tt.want, extractSenderName(msg), tt.from)
	}

	assert.Equal(t, "Unknown", extractSenderName(&gmail.Message{}))
}

func TestDecodeAttachment_Unpadded(t *testing.T) {
	data, err := decodeAttachment(base64.RawURLEncoding.EncodeToString([]byte("ab")))
	require.NoError(t, err)
	assert.Equal(t, "ab", string(data))
}

package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// MultipartRequest describes a multipart form submission for tests.
// FileField/FileName/FileContent are optional; when FileName is empty no
// file part is attached.
type MultipartRequest struct {
	Method      string
	URL         string
	Fields      map[string]string
	FileField   string
	FileName    string
	FileContent []byte
}

// ExecuteMultipartRequest builds and executes a multipart form request.
func ExecuteMultipartRequest(t *testing.T, router *gin.Engine, req MultipartRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range req.Fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field %s: %v", key, err)
		}
	}

	if req.FileName != "" {
		part, err := writer.CreateFormFile(req.FileField, req.FileName)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(req.FileContent); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to finalize multipart body: %v", err)
	}

	httpReq := httptest.NewRequest(req.Method, req.URL, &body)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httpReq)

	return recorder
}

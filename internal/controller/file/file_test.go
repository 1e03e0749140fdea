package file

import (
	"JobBridge-backend/internal/auth"
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/middleware"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/storage"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
}

type mockStorageClient struct {
	uploaded  map[string][]byte
	uploadErr error
}

func newMockStorageClient() *mockStorageClient {
	return &mockStorageClient{uploaded: make(map[string][]byte)}
}

func (m *mockStorageClient) UploadFile(_ context.Context, objectName string, fileData io.Reader, _ chan<- int64) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	buf, err := io.ReadAll(fileData)
	if err != nil {
		return err
	}
	m.uploaded[objectName] = buf
	return nil
}

func (m *mockStorageClient) DownloadFile(_ context.Context, objectName string) (io.ReadCloser, int64, error) {
	data, ok := m.uploaded[objectName]
	if !ok {
		return nil, 0, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *mockStorageClient) DeleteFile(_ context.Context, objectName string) error {
	if _, ok := m.uploaded[objectName]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(m.uploaded, objectName)
	return nil
}

func (m *mockStorageClient) ListObjects(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.uploaded))
	for name := range m.uploaded {
		names = append(names, name)
	}
	return names, nil
}

func newRouter(client storage.StorageClient) *gin.Engine {
	r := gin.Default()
	fc := NewFileController(testDB, client)
	r.POST("/file", middleware.RequireAuth(testDB), middleware.SizeLimit(10<<20), fc.UploadHandler)
	r.GET("/file/:id", middleware.RequireAuth(testDB), fc.GetHandler)
	r.DELETE("/file/:id", middleware.RequireAuth(testDB), fc.DeleteHandler)
	return r
}

func uploadRequest(t *testing.T, token string, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/file", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadHandler_InlineRoundTrip(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	r := newRouter(nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, token, "resume.pdf", []byte("pdf bytes")))
	require.Equal(t, http.StatusCreated, rec.Code)

	var record model.File
	require.NoError(t, testDB.Where("display_name = ?", "resume.pdf").Order("id DESC").First(&record).Error)
	assert.Equal(t, database.TestApplicant1.ID, record.OwnerID)
	assert.Nil(t, record.StorageObjectName)
	assert.Equal(t, []byte("pdf bytes"), record.Content)

	rec = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/file/%d", record.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf bytes", rec.Body.String())
}

func TestUploadHandler_CloudMode(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant2.Username, database.TestSeedPassword)
	require.NoError(t, err)

	client := newMockStorageClient()
	r := newRouter(client)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, token, "transcript.pdf", []byte("transcript bytes")))
	require.Equal(t, http.StatusCreated, rec.Code)

	var record model.File
	require.NoError(t, testDB.Where("display_name = ?", "transcript.pdf").Order("id DESC").First(&record).Error)
	require.NotNil(t, record.StorageObjectName)
	assert.True(t, strings.HasPrefix(*record.StorageObjectName, documentObjectPrefix+"/"))
	assert.Nil(t, record.Content)
	assert.Equal(t, []byte("transcript bytes"), client.uploaded[*record.StorageObjectName])

	// delete removes the blob and the record
	rec = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("/file/%d", record.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, client.uploaded)
}

func TestUploadHandler_RejectsExtension(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestApplicant1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	r := newRouter(nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, token, "malware.exe", []byte("nope")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestGetHandler_OwnerOnly(t *testing.T) {
	ownerToken, err := auth.GetAccessToken(t, testDB, database.TestApplicant1.Username, database.TestSeedPassword)
	require.NoError(t, err)
	otherToken, err := auth.GetAccessToken(t, testDB, database.TestApplicant2.Username, database.TestSeedPassword)
	require.NoError(t, err)

	r := newRouter(nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, ownerToken, "private.pdf", []byte("secret")))
	require.Equal(t, http.StatusCreated, rec.Code)

	var record model.File
	require.NoError(t, testDB.Where("display_name = ?", "private.pdf").Order("id DESC").First(&record).Error)

	rec = httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/file/%d", record.ID), nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

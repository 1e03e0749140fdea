// Package file provides HTTP handlers for document upload and retrieval.
package file

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/storage"
	"JobBridge-backend/internal/utilities"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const documentObjectPrefix = "documents"

// uploadTimeout bounds one blob write including its retries.
const uploadTimeout = 2 * time.Minute

// FileController handles document related endpoints
type FileController struct {
	DB      *database.DBinstanceStruct
	Storage storage.StorageClient
}

// NewFileController creates a new instance of FileController
func NewFileController(db *database.DBinstanceStruct, client storage.StorageClient) *FileController {
	return &FileController{
		DB:      db,
		Storage: client,
	}
}

// UploadHandler stores an uploaded document for the calling user.
// @Summary Upload document
// @Description Only files smaller than 10 MB with an allowed extension are permitted.
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param file formData file true "Document to upload"
// @Success 201 {object} model.File "Stored document metadata"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 413 {object} utilities.ErrorResponse "File is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /file [post]
func (fc *FileController) UploadHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	rawFile, err := c.FormFile("file")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	if err := storage.Validate(rawFile.Filename, rawFile.Size, storage.DocumentExtensions, storage.MaxUploadBytes); err != nil {
		status := http.StatusUnsupportedMediaType
		if errors.Is(err, storage.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("failed to close uploaded file")
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return
	}

	record := model.File{
		OwnerID:     user.ID,
		DisplayName: rawFile.Filename,
		ByteSize:    int64(len(fileBytes)),
		MimeType:    rawFile.Header.Get("Content-Type"),
		Extension:   strings.ToLower(filepath.Ext(rawFile.Filename)),
	}

	if fc.Storage != nil {
		objectName := fmt.Sprintf("%s/%s%s", documentObjectPrefix, uuid.NewString(), record.Extension)
		ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
		defer cancel()
		if err := fc.Storage.UploadFile(ctx, objectName, bytes.NewReader(fileBytes), nil); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to store file: %s", err.Error()),
			})
			return
		}
		record.StorageObjectName = &objectName
	} else {
		record.Content = fileBytes
	}

	if err := fc.DB.Create(&record).Error; err != nil {
		// the blob is now unreferenced, the orphan sweep reclaims it
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save file record: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// loadFile fetches a file record by the :id route parameter.
func (fc *FileController) loadFile(c *gin.Context) (*model.File, bool) {
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid file ID"})
		return nil, false
	}

	record := model.File{}
	if err := fc.DB.First(&record, uint(fileID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
		} else {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
			})
		}
		return nil, false
	}
	return &record, true
}

// GetHandler streams the document content back to its owner.
// @Summary Download document
// @Description Only the owner of the document can download it.
// @Tags File
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "File ID"
// @Success 200 {file} binary "Document content"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of the file"
// @Failure 404 {object} utilities.ErrorResponse "File not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /file/{id} [get]
func (fc *FileController) GetHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	record, ok := fc.loadFile(c)
	if !ok {
		return
	}
	if record.OwnerID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this file"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.DisplayName))

	if record.StorageObjectName == nil {
		c.Data(http.StatusOK, record.MimeType, record.Content)
		return
	}

	reader, size, err := fc.Storage.DownloadFile(c.Request.Context(), *record.StorageObjectName)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File content is missing from storage"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to download file: %s", err.Error()),
		})
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.WithError(err).Warn("failed to close storage reader")
		}
	}()

	c.DataFromReader(http.StatusOK, size, record.MimeType, reader, nil)
}

// DeleteHandler removes a document and its blob.
// @Summary Delete document
// @Description Only the owner of the document can delete it.
// @Tags File
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "File ID"
// @Success 200 {object} utilities.MessageResponse "File deleted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of the file"
// @Failure 404 {object} utilities.ErrorResponse "File not found"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /file/{id} [delete]
func (fc *FileController) DeleteHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	record, ok := fc.loadFile(c)
	if !ok {
		return
	}
	if record.OwnerID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You do not own this file"})
		return
	}

	if record.StorageObjectName != nil && fc.Storage != nil {
		err := fc.Storage.DeleteFile(c.Request.Context(), *record.StorageObjectName)
		if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to delete file content: %s", err.Error()),
			})
			return
		}
	}

	if err := fc.DB.Delete(record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete file record: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "File deleted"})
}

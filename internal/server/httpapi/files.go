package httpapi

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/tijori/tijori/internal/filex"
	"github.com/tijori/tijori/internal/server/services"
)

const defaultContentType = "application/octet-stream"

// createFile accepts a multipart upload. The part is staged on disk so
// that the blob store receives a seekable body of known size.
func (s *HTTPServer) createFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "File is required.")
		return
	}
	if s.maxUpload > 0 && header.Size > s.maxUpload {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, messageResponse{Message: "File is too large."})
		return
	}

	name := c.PostForm("fileName")
	if name == "" {
		name = filepath.Base(header.Filename)
	}

	ctx := c.Request.Context()
	staged := filepath.Join(s.uploadDir, filex.StagingName(header.Filename))
	if err := c.SaveUploadedFile(header, staged); err != nil {
		s.abortWithError(c, err, errText{})
		return
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			s.logger.Warn(ctx, "staged upload not removed", "path", staged, "error", err)
		}
	}()

	body, err := os.Open(staged)
	if err != nil {
		s.abortWithError(c, err, errText{})
		return
	}
	defer body.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	f, err := s.files.Upload(ctx, identity(c).UserID, services.Upload{
		Name:          name,
		Body:          body,
		Size:          header.Size,
		ContentType:   contentType,
		CollectionIDs: c.PostFormArray("collectionIds"),
	})
	if err != nil {
		s.abortWithError(c, err, errText{
			invalid:  "File and file name are required.",
			notFound: msgCollectionAbsent,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "file": f})
}

func (s *HTTPServer) listFiles(c *gin.Context) {
	list, err := s.files.List(c.Request.Context(), identity(c).UserID, c.Query("collectionId"), pageFromQuery(c))
	if err != nil {
		s.abortWithError(c, err, errText{notFound: msgCollectionAbsent})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) getFile(c *gin.Context) {
	var req fileIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "File ID is required.")
		return
	}

	f, err := s.files.Get(c.Request.Context(), identity(c).UserID, req.FileID)
	if err != nil {
		s.abortWithError(c, err, errText{notFound: msgFileAbsent})
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": f})
}

func (s *HTTPServer) renameFile(c *gin.Context) {
	id, name := c.Query("fileId"), c.Query("newFileName")
	if id == "" || name == "" {
		badRequest(c, "File ID and new name are required.")
		return
	}

	f, err := s.files.Rename(c.Request.Context(), identity(c).UserID, id, name)
	if err != nil {
		s.abortWithError(c, err, errText{
			invalid:  "File ID and new name are required.",
			notFound: msgFileAbsent,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File renamed successfully", "file": f})
}

func (s *HTTPServer) setFileCollections(c *gin.Context) {
	var req setFileCollectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "File ID is required.")
		return
	}

	f, err := s.files.SetCollections(c.Request.Context(), identity(c).UserID, req.FileID, req.CollectionIDs)
	if err != nil {
		s.abortWithError(c, err, errText{notFound: "File or collection not found or access denied."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File collections updated successfully", "file": f})
}

func (s *HTTPServer) deleteFile(c *gin.Context) {
	id := c.Query("fileId")
	if id == "" {
		badRequest(c, "File ID is required.")
		return
	}

	if err := s.files.Delete(c.Request.Context(), identity(c).UserID, id); err != nil {
		s.abortWithError(c, err, errText{notFound: msgFileAbsent})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "File deleted successfully"})
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) createCollection(c *gin.Context) {
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Collection name is required.")
		return
	}

	col, err := s.collections.Create(c.Request.Context(), identity(c).UserID, req.CollectionName)
	if err != nil {
		s.abortWithError(c, err, errText{
			invalid:  "Collection name is required.",
			conflict: "Collection with this name already exists.",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Collection created successfully", "collection": col})
}

func (s *HTTPServer) listCollections(c *gin.Context) {
	list, err := s.collections.List(c.Request.Context(), identity(c).UserID, pageFromQuery(c))
	if err != nil {
		s.abortWithError(c, err, errText{})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) getCollection(c *gin.Context) {
	var req collectionIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Collection ID is required.")
		return
	}

	col, err := s.collections.Get(c.Request.Context(), identity(c).UserID, req.CollectionID)
	if err != nil {
		s.abortWithError(c, err, errText{notFound: msgCollectionAbsent})
		return
	}

	c.JSON(http.StatusOK, gin.H{"collection": col, "fileCount": col.FileCount})
}

func (s *HTTPServer) renameCollection(c *gin.Context) {
	id, name := c.Query("collectionId"), c.Query("newCollectionName")
	if id == "" || name == "" {
		badRequest(c, "Collection ID and new name are required.")
		return
	}

	col, err := s.collections.Rename(c.Request.Context(), identity(c).UserID, id, name)
	if err != nil {
		s.abortWithError(c, err, errText{
			invalid:  "Collection ID and new name are required.",
			notFound: msgCollectionAbsent,
			conflict: "Another collection with this name already exists.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection renamed successfully", "collection": col})
}

func (s *HTTPServer) deleteCollection(c *gin.Context) {
	id := c.Query("collectionId")
	if id == "" {
		badRequest(c, "Collection ID is required.")
		return
	}

	if err := s.collections.Delete(c.Request.Context(), identity(c).UserID, id); err != nil {
		s.abortWithError(c, err, errText{notFound: msgCollectionAbsent})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Collection deleted successfully"})
}

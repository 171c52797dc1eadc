package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tijori/tijori/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createCollectionRequest struct {
	CollectionName string `json:"collectionName" binding:"required"`
}

type collectionIDRequest struct {
	CollectionID string `json:"collectionId" binding:"required"`
}

type fileIDRequest struct {
	FileID string `json:"fileId" binding:"required"`
}

type setFileCollectionsRequest struct {
	FileID        string   `json:"fileId" binding:"required"`
	CollectionIDs []string `json:"collectionIds"`
}

// pageFromQuery reads order, qty and page leniently: unparsable values
// become zero and are defaulted by models.Page.Normalize.
func pageFromQuery(c *gin.Context) models.Page {
	qty, _ := strconv.Atoi(c.Query("qty"))
	page, _ := strconv.Atoi(c.Query("page"))
	return models.Page{Page: page, Qty: qty, Order: c.Query("order")}.Normalize()
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agrimeme/backend/internal/apperrors"
	"github.com/agrimeme/backend/internal/auth"
	"github.com/agrimeme/backend/internal/middleware"
	"github.com/agrimeme/backend/internal/repository"
)

// respondError writes API errors with their status and hides everything else
// behind a 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return auth.Identity{}, false
	}
	return id, true
}

func pageRequest(c *gin.Context, sortable ...string) (repository.PageRequest, bool) {
	req, err := repository.ParsePageRequest(c.Query("page"), c.Query("size"), c.Query("sort"), sortable...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

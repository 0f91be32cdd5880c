package api

import (
	"net/http"
	"strconv"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/util"
	"storefront/internal/validate"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// respondError writes err as {message, errors}. Internal causes are logged
// and replaced by the generic message.
func respondError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	if appErr.Code >= http.StatusInternalServerError {
		util.GetLogger().Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(appErr.Err))
		appErr = apperr.ErrInternal
	}
	c.AbortWithStatusJSON(appErr.Code, appErr)
}

// bindJSON decodes and validates the request body into v
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, validate.Translate(err))
		return false
	}
	return true
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.Invalid("id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func positiveQuery(c *gin.Context, name string) (int, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false, apperr.Invalid(name, name+" must be a positive integer")
	}
	return n, true, nil
}

// listOptions reads page and limit. With neither present the list is
// unpaged; with only one present the other takes its default.
func listOptions(c *gin.Context) (models.ListOptions, error) {
	page, hasPage, err := positiveQuery(c, "page")
	if err != nil {
		return models.ListOptions{}, err
	}
	limit, hasLimit, err := positiveQuery(c, "limit")
	if err != nil {
		return models.ListOptions{}, err
	}
	if !hasPage && !hasLimit {
		return models.ListOptions{}, nil
	}
	if !hasPage {
		page = 1
	}
	if !hasLimit {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return models.ListOptions{Page: page, Limit: limit}, nil
}

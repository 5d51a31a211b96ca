package api

import (
	"net/http"

	"github.com/csoj/csoj/internal/apierr"

	"github.com/gin-gonic/gin"
)

// fail writes the {code, reason, message} error shape spec.md §7 requires
// and aborts the handler chain.
func fail(c *gin.Context, err *apierr.Error) {
	c.AbortWithStatusJSON(apierr.HTTPStatus(err.Code), err)
}

// failExternal wraps an unexpected system/store error as ERR_EXTERNAL.
func failExternal(c *gin.Context, err error) {
	fail(c, apierr.Externalf("%v", err))
}

func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

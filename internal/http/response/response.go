package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yungbote/examgenius-backend/internal/pkg/apierr"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondError writes err using its taxonomy status. The raw error is kept on the
// gin context so the request logger can record causes that are hidden from callers.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		err = apierr.Internal("respond", nil)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apierr.Status(err), ErrorBody{
		Error: apierr.PublicMessage(err),
		Code:  apierr.Code(err),
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

package response

import (
	"servetix/internal/shared/apperror"
	"servetix/pkg/logger"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError writes err using the status of its apperror kind. Details of
// unexpected errors are logged, never returned to the client.
func RespondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	code := apperror.HTTPStatus(kind)
	logger.GetDefault().LogHTTPError(c, err, code)

	message := "internal server error"
	var fields interface{}
	if appErr, ok := asAppError(err); ok && kind != apperror.KindUnexpected {
		message = appErr.Message
		if len(appErr.Fields) > 0 {
			fields = appErr.Fields
		}
	}

	RespondJSON(c, "error", code, message, nil, fields)
}

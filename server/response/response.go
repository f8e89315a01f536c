package response

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/carefront/errors"
	"go.uber.org/zap"
)

// JSON writes the uniform response envelope.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	errMessage := ""
	if err != nil {
		errMessage = err.Error()
	}
	responsedata := gin.H{
		"message":   message,
		"data":      data,
		"errors":    errMessage,
		"status":    http.StatusText(status),
		"timestamp": time.Now().Format(time.RFC850),
	}

	c.JSON(status, responsedata)
}

// HandleErrors maps err to its status code. Anything that is not an
// *errs.Error is reported as a generic server failure.
func HandleErrors(c *gin.Context, err error) {
	var apiErr *errs.Error
	if !stderrors.As(err, &apiErr) {
		zap.L().Error("unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
		JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
		return
	}
	if apiErr.Kind == errs.KindPersistence {
		zap.L().Error("persistence failure", zap.Error(apiErr.Unwrap()), zap.String("path", c.FullPath()))
	}
	JSON(c, "", apiErr.Status, nil, apiErr)
}

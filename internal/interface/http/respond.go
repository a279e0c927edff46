package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devconnector-api/pkg/apperr"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
	"github.com/oksasatya/devconnector-api/pkg/response"
	"github.com/oksasatya/devconnector-api/pkg/validation"
)

// respondError writes err as an error envelope. Store and internal failures
// are logged with the request id and reach the client only as "server error".
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Wrap(apperr.KindInternal, "server error", err)
	}
	status := apperr.HTTPStatus(ae.Kind)

	if status >= http.StatusInternalServerError {
		helpers.LogError(logger, "request failed", ae.Err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"kind":       ae.Kind,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		})
		response.Error[any](c, status, "server error", errorBody(ae.Kind, nil, ae.Details))
		return
	}
	response.Error[any](c, status, ae.Message, errorBody(ae.Kind, ae.Fields, ae.Details))
}

func errorBody(kind apperr.Kind, fields map[string]string, details any) gin.H {
	body := gin.H{"code": kind}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	if details != nil {
		body["details"] = details
	}
	return body
}

// bindError reports a request body that failed to bind or validate.
func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid request", errorBody(apperr.KindValidation, validation.ToDetails(err), nil))
}

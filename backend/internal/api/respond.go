package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindgraph/backend/pkg/errors"
	"mindgraph/backend/pkg/logger"
)

// errorBody is the JSON error shape every endpoint returns
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// respondError maps the error taxonomy to HTTP statuses: 404 not found,
// 400 validation, 409 conflict, 500 everything else (upstream and store
// failures included, with the underlying message attached).
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrorTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrorTypeConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Get().Error(message, zap.Error(err))
	}

	c.JSON(status, errorBody{Message: message, Error: err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody{Message: "invalid request body", Error: err.Error()})
}

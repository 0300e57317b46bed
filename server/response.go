package server

import (
	"errors"
	"net/http"

	"github.com/etnz/portfoy"
	"github.com/etnz/portfoy/sheet"
	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Message: "ok", Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, apiResponse{Code: status, Message: err.Error()})
}

// status maps domain errors to http status codes.
func status(err error) int {
	var verr *portfoy.ValidationError
	switch {
	case errors.Is(err, portfoy.ErrTotalReadOnly):
		return http.StatusForbidden
	case errors.Is(err, sheet.ErrNoProfile):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

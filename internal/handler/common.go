// Package handler exposes the auction engine over HTTP.  Business
// failures are answered with 422 and the engine's message; the message
// is meant for the end user.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-auction/internal/auction"
	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/middleware"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the caller set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errNoUser
	}
	return id, nil
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// result writes a business outcome.  extra is merged into the success
// body.
func result(c echo.Context, res auction.Result, okStatus int, extra echo.Map) error {
	if !res.OK {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": res.Message})
	}
	body := echo.Map{"message": res.Message}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(okStatus, body)
}

// failure answers an infrastructure error: 409 for a busy lot, 404 for
// a missing entity and 500 otherwise.
func failure(c echo.Context, log zerolog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "the auction item is busy, please retry"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	log.Error().Err(err).Str("op", op).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

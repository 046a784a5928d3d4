package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/logger"
)

type errorMapping struct {
	status int
	code   dto.ErrorCode
}

// Sentinel-to-HTTP mapping. Controllers never pick status codes themselves;
// everything funnels through HandleAPIError.
var errorMappings = []struct {
	err     error
	mapping errorMapping
}{
	// 401
	{apperrors.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials}},
	{apperrors.ErrTokenExpired, errorMapping{http.StatusUnauthorized, dto.ErrorCodeExpiredToken}},
	{apperrors.ErrTokenInvalid, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrTokenRevoked, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrTokenNotFound, errorMapping{http.StatusUnauthorized, dto.ErrorCodeTokenNotFound}},
	{apperrors.ErrInvalidFormat, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken}},

	// 403
	{apperrors.ErrPermissionDenied, errorMapping{http.StatusForbidden, dto.ErrorCodeForbidden}},
	{apperrors.ErrAccountDisabled, errorMapping{http.StatusForbidden, dto.ErrorCodeForbidden}},
	{apperrors.ErrSetupRequired, errorMapping{http.StatusForbidden, dto.ErrorCodeSetupRequired}},

	// 404
	{apperrors.ErrResourceNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrUserNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrProjectNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrApplicationNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrFileNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},

	// 409
	{apperrors.ErrConflict, errorMapping{http.StatusConflict, dto.ErrorCodeResourceConflict}},
	{apperrors.ErrEmailAlreadyExists, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrUsernameExists, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrDuplicateApplication, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrApplicationDecided, errorMapping{http.StatusConflict, dto.ErrorCodeResourceConflict}},
	{apperrors.ErrProjectNotActive, errorMapping{http.StatusConflict, dto.ErrorCodeResourceConflict}},
	{apperrors.ErrSetupAlreadyDone, errorMapping{http.StatusConflict, dto.ErrorCodeResourceConflict}},

	// 400
	{apperrors.ErrValidationFailed, errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed}},
	{apperrors.ErrInvalidEmail, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidEmail}},
	{apperrors.ErrInvalidEmailDomain, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidEmail}},
	{apperrors.ErrInvalidPassword, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidPassword}},
	{apperrors.ErrBadRequest, errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed}},
	{apperrors.ErrInvalidStatus, errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed}},
	{apperrors.ErrInvalidFileType, errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed}},
	{apperrors.ErrFileTooLarge, errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed}},
}

// HandleAPIError translates service errors into the standard error envelope
func HandleAPIError(c *gin.Context, err error) {
	message := err.Error()
	field := ""

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		if customErr.Message != "" {
			message = customErr.Message
		}
		field = customErr.Field
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			detail := dto.NewErrorDetail(m.mapping.code, message)
			if field != "" {
				detail = detail.WithField(field)
			}
			c.JSON(m.mapping.status, dto.NewErrorResponse(detail))
			return
		}
	}

	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viagens-moz/intercity/internal/api/dto"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/service/booking"
	"github.com/viagens-moz/intercity/internal/service/report"
	apperrors "github.com/viagens-moz/intercity/pkg/errors"
	"github.com/viagens-moz/intercity/pkg/logger"
)

// validationErrors are answered with 400 and their own message
var validationErrors = []error{
	booking.ErrMissingContact,
	trip.ErrInvalidSeats,
	trip.ErrInvalidPayment,
	parcel.ErrInvalidSize,
	parcel.ErrInvalidPrice,
	driver.ErrInvalidDriverName,
	driver.ErrInvalidDriverPhone,
	driver.ErrInvalidSeats,
	report.ErrInvalidShare,
}

// toAppError translates service and domain errors to HTTP errors
func toAppError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, driver.ErrDriverNotFound):
		return apperrors.ErrDriverNotFound
	case errors.Is(err, trip.ErrTripNotFound):
		return apperrors.ErrTripNotFound
	case errors.Is(err, parcel.ErrParcelNotFound):
		return apperrors.ErrParcelNotFound
	case errors.Is(err, booking.ErrFareUnavailable):
		return apperrors.ErrFareUnavailable
	case errors.Is(err, booking.ErrInvalidRoute),
		errors.Is(err, route.ErrUnknownLocation),
		errors.Is(err, route.ErrEmptySegment):
		return apperrors.ErrInvalidRoute
	case errors.Is(err, driver.ErrInvalidDate):
		return apperrors.ErrInvalidDate
	case errors.Is(err, report.ErrInvalidMonth):
		return apperrors.ErrInvalidMonth
	case errors.Is(err, trip.ErrInvalidStatus), errors.Is(err, parcel.ErrInvalidStatus):
		return apperrors.ErrInvalidStatus
	case errors.Is(err, trip.ErrTripNotAssignable):
		return apperrors.ErrTripNotAssignable
	case errors.Is(err, driver.ErrDriverNotEligible):
		return apperrors.ErrDriverNotEligible
	case errors.Is(err, booking.ErrDuplicateRequest):
		return apperrors.ErrDuplicateRequest
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return apperrors.BadRequest(err.Error(), err)
		}
	}
	return apperrors.GetAppError(err)
}

// respondError renders err as {"code","message"} with its HTTP status
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.Logger.Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
	}
	c.JSON(appErr.Status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}

// badRequest answers malformed payloads and parameters
func (h *Handlers) badRequest(c *gin.Context, message string, err error) {
	resp := dto.ErrorResponse{Code: "BAD_REQUEST", Message: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

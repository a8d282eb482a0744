package daemon

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlie0129/acuity/pkg/api"
	"github.com/charlie0129/acuity/pkg/calibration"
)

func statusOf(kind calibration.Kind) int {
	switch kind {
	case calibration.KindInvalidCalibrationInput, calibration.KindInvalidChartSpec:
		return http.StatusBadRequest
	case calibration.KindDetectionTooUnreliable:
		return http.StatusUnprocessableEntity
	case calibration.KindUncalibratedState, calibration.KindAlreadyCalibrated:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes err as an api.ErrorResponse. Calibration errors get
// the status of their kind, anything else is a 500.
func abortWithError(c *gin.Context, err error) {
	kind := calibration.KindOf(err)
	abortWithStatus(c, statusOf(kind), kind, err)
}

func abortWithStatus(c *gin.Context, status int, kind calibration.Kind, err error) {
	c.IndentedJSON(status, api.ErrorResponse{Kind: kind, Message: err.Error()})
	_ = c.AbortWithError(status, err)
}

// abortBadRequest is for bodies and queries that do not parse at all.
func abortBadRequest(c *gin.Context, err error) {
	abortWithStatus(c, http.StatusBadRequest, "", err)
}

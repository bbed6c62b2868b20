package handlers

import (
	"errors"
	"net/http"

	"inventory_control_backend/internal/services"
	"inventory_control_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps service errors onto the API error contract.
func respondServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrMissingColumn),
		errors.Is(err, services.ErrUnsupportedFile):
		utils.RespondValidationFailed(c, err.Error(), action)
	case errors.Is(err, services.ErrUnknownProduct),
		errors.Is(err, services.ErrUnknownImport),
		errors.Is(err, services.ErrOrderSnapshotNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), action))
	case errors.Is(err, services.ErrDuplicateProduct),
		errors.Is(err, services.ErrDuplicateInSequence):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), action))
	case errors.Is(err, services.ErrUnsavedChange):
		utils.LogError(err, action+": state changed in memory but was not saved")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailed,
			"The change was applied but could not be saved to storage.", err.Error()))
	case errors.Is(err, services.ErrPersistence):
		utils.LogError(err, action+": storage failed, nothing changed")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodePersistenceFailed,
			"Storage failed while trying to "+action+". Nothing was changed.", err.Error()))
	default:
		utils.LogError(err, action+": unexpected error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError,
			"Internal error while trying to "+action+".", "Internal error"))
	}
}

// bindJSON binds the request body and reports binding failures as input errors.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondValidationFailed(c, "Invalid request payload: "+err.Error(), err.Error())
		return false
	}
	return true
}

package services

import (
	"errors"

	"inventory_control_backend/internal/repositories"
	"inventory_control_backend/pkg/utils"
)

var (
	ErrValidation            = errors.New("validation error")
	ErrMissingColumn         = errors.New("required column not found")
	ErrUnsupportedFile       = utils.ErrUnsupportedFileType
	ErrDuplicateProduct      = errors.New("product number already exists")
	ErrUnknownProduct        = errors.New("unknown product number")
	ErrDuplicateInSequence   = errors.New("product number listed more than once")
	ErrUnknownImport         = errors.New("unknown import id")
	ErrOrderSnapshotNotFound = errors.New("no order estimate for this location and date")
	ErrPersistence           = repositories.ErrPersistence

	// ErrUnsavedChange accompanies ErrPersistence when the in-memory state already holds the change.
	ErrUnsavedChange = errors.New("change applied but not saved")
)

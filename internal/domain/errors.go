package domain

import "errors"

var (
	ErrValidation     = errors.New("validation")        // 400
	ErrEmptyCart      = errors.New("cart is empty")     // 400
	ErrForbidden      = errors.New("forbidden")         // 403
	ErrNotFound       = errors.New("not found")         // 404
	ErrConflict       = errors.New("conflict")          // 409
	ErrDuplicateOrder = errors.New("duplicate order")   // 409
	ErrPersistence    = errors.New("persistence")       // 500
	ErrMediaUpload    = errors.New("media upload")      // migration only
	ErrLocalDelete    = errors.New("local file delete") // migration only, non-fatal
)

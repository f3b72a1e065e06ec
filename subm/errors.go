package subm

import (
	"fmt"
	"net/http"

	"github.com/deadlinr/backend/srvcerror"
)

const ErrCodeImageEmpty = "image_empty"

func newErrImageEmpty() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeImageEmpty,
		"the photo is empty",
	)
}

const ErrCodeImageTooLarge = "image_too_large"

func newErrImageTooLarge(maxMiB int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeImageTooLarge,
		fmt.Sprintf("the photo must be at most %d MiB", maxMiB),
	).SetHttpStatusCode(http.StatusRequestEntityTooLarge)
}

const ErrCodeImageDimensionsTooLarge = "image_dimensions_too_large"

func newErrImageDimensionsTooLarge(maxMegapixels int) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeImageDimensionsTooLarge,
		fmt.Sprintf("the photo must be at most %d megapixels", maxMegapixels),
	).SetHttpStatusCode(http.StatusRequestEntityTooLarge)
}

const ErrCodeUnsupportedImage = "unsupported_image_type"

func newErrUnsupportedImage(detected string) *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeUnsupportedImage,
		fmt.Sprintf("only JPEG and PNG photos are accepted, got %s", detected),
	).SetHttpStatusCode(http.StatusUnsupportedMediaType)
}

const ErrCodeImageCorrupt = "image_corrupt"

func newErrImageCorrupt() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeImageCorrupt,
		"the photo could not be read",
	)
}

const ErrCodeSubmNotPending = "submission_not_pending"

// ErrSubmNotPending is returned when reviewing a submission that already
// has a final status.
func ErrSubmNotPending() *srvcerror.Error {
	return srvcerror.Validation(
		ErrCodeSubmNotPending,
		"this submission has already been reviewed",
	).SetHttpStatusCode(http.StatusConflict)
}

func ErrSubmNotFound() *srvcerror.Error {
	return srvcerror.NotFound("submission")
}

package conversationerrors

import (
	"net/http"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"
)

var ErrMissingInput = apperror.New(
	apperror.CodeInvalidInput,
	"a turn needs either text or a selection",
	http.StatusBadRequest,
)

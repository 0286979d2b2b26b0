package classifiererrors

import (
	"net/http"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"
)

var ErrClassifierUnavailable = apperror.New(
	apperror.CodeServiceUnavailable,
	"language understanding service is unavailable",
	http.StatusServiceUnavailable,
)

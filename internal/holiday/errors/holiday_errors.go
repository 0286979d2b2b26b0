package holidayerrors

import (
	"net/http"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"
)

var ErrCalendarUnavailable = apperror.New(
	apperror.CodeServiceUnavailable,
	"holiday calendar is unavailable",
	http.StatusServiceUnavailable,
)

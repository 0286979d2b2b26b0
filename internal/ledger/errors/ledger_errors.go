package ledgererrors

import (
	"net/http"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"no leave record found for employee",
		http.StatusNotFound,
	)
	ErrQuotaExceeded = apperror.New(
		apperror.CodeConflict,
		"annual leave quota exceeded",
		http.StatusConflict,
	)
	ErrDuplicateRequest = apperror.New(
		apperror.CodeConflict,
		"a request for that date already exists",
		http.StatusConflict,
	)
	ErrNoRequests = apperror.New(
		apperror.CodeInvalidInput,
		"at least one leave request is required",
		http.StatusBadRequest,
	)
)

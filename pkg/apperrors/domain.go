package apperrors

import (
	"net/http"
)

/*
Предопределенные ошибки бизнес-логики маркетплейса.
Все они синхронные и возвращаются вызывающему как есть, без автоматических повторов.
*/

// --- Auth ---

var ErrPermissionDenied = New(
	CodePermissionDenied,
	"auth",
	"You are not allowed to perform this action",
	http.StatusForbidden,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"user",
	"Email already exists",
	http.StatusConflict,
)

var ErrAccountInactive = New(
	CodeAccountInactive,
	"auth",
	"Account is suspended or banned",
	http.StatusForbidden,
)

// --- Jobs ---

// ErrInvalidTransition - запрошенный статус не входит в допустимые переходы из текущего.
var ErrInvalidTransition = New(
	CodeInvalidTransition,
	"job",
	"Job status transition is not allowed",
	http.StatusConflict,
)

// ErrSelfAssignmentDenied - владелец пытается назначить исполнителем самого себя.
var ErrSelfAssignmentDenied = New(
	CodeSelfAssignmentDenied,
	"job",
	"Job owner cannot be assigned to their own job",
	http.StatusUnprocessableEntity,
)

var ErrInvalidBudget = New(
	CodeInvalidBudget,
	"job",
	"Maximum budget cannot be less than minimum budget",
	http.StatusBadRequest,
)

// ErrConcurrentUpdate - запись изменилась между чтением и записью (проигранная гонка).
// Безопасно повторить один раз со свежим состоянием.
var ErrConcurrentUpdate = New(
	CodeConflict,
	"store",
	"Entity was modified concurrently, retry with fresh state",
	http.StatusConflict,
)

// --- Payments ---

var ErrInvalidPaymentTransition = New(
	CodeInvalidPaymentTransition,
	"payment",
	"Payment status transition is not allowed",
	http.StatusConflict,
)

var ErrDuplicatePayment = New(
	CodeDuplicatePayment,
	"payment",
	"Payment for this job already exists",
	http.StatusConflict,
)

var ErrInvalidAmount = New(
	CodeInvalidAmount,
	"payment",
	"Payment amount must be positive",
	http.StatusBadRequest,
)

// ErrRefundWindowExpired - после release возврат возможен только в течение 7 дней
var ErrRefundWindowExpired = New(
	CodeRefundWindowExpired,
	"payment",
	"Refund window for released payment has expired",
	http.StatusUnprocessableEntity,
)

// --- Reviews ---

var ErrReviewNotEligible = New(
	CodeReviewNotEligible,
	"review",
	"Job must be completed before it can be reviewed",
	http.StatusUnprocessableEntity,
)

var ErrInvalidReviewee = New(
	CodeInvalidReviewee,
	"review",
	"Reviewee must be a job participant other than the reviewer",
	http.StatusUnprocessableEntity,
)

var ErrDuplicateReview = New(
	CodeDuplicateReview,
	"review",
	"You have already reviewed this job",
	http.StatusConflict,
)

var ErrInvalidRating = New(
	CodeInvalidRating,
	"review",
	"Rating must be between 1 and 5",
	http.StatusBadRequest,
)

var ErrInvalidComment = New(
	CodeInvalidComment,
	"review",
	"Comment must be between 10 and 1000 characters",
	http.StatusBadRequest,
)

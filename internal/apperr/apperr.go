package apperr

import "github.com/gofiber/fiber/v2"

// Makine tarafından okunabilir hata kodları. İstemciler mesaja değil bu kodlara bağlanır.
const (
	CodeValidation                 = "VALIDATION_ERROR"
	CodeNotFound                   = "NOT_FOUND"
	CodeConflict                   = "CONFLICT"
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeOrderNotMutable            = "ORDER_NOT_MUTABLE"
	CodeInvalidStatusTransition    = "INVALID_STATUS_TRANSITION"
	CodeIncompleteSplitPayment     = "INCOMPLETE_SPLIT_PAYMENT"
	CodeMissingCustomerAttribution = "MISSING_CUSTOMER_ATTRIBUTION"
	CodeAllocationMismatch         = "ALLOCATION_MISMATCH"
	CodeOverAllocation             = "OVER_ALLOCATION"
	CodeInternal                   = "INTERNAL"
)

// Error - HTTP durumu ve sabit kod taşıyan iş kuralı hatası
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *Error {
	return New(fiber.StatusBadRequest, code, message)
}

func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, CodeNotFound, message)
}

func Conflict(message string) *Error {
	return New(fiber.StatusConflict, CodeConflict, message)
}

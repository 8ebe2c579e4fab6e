package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeInvalidArgument ErrCode = "INVALID_ARGUMENT"
	CodeNotFound        ErrCode = "NOT_FOUND"
)

const (
	ErrMsgBookIDRequired      = "book id is required"
	ErrMsgProductIDRequired   = "product id is required"
	ErrMsgPostIDRequired      = "post id is required"
	ErrMsgRentNeedsDuration   = "rent requires a duration of 7, 14 or 30 days"
	ErrMsgBuyTakesNoDuration  = "buy does not take a rent duration"
	ErrMsgUnknownMode         = "purchase type must be buy or rent"
	ErrMsgPostContentRequired = "post content is required"
	ErrMsgPostContentTooLong  = "post content exceeds 400 characters"
	ErrMsgPostAuthorRequired  = "post author is required"
)

// CartError is a rejected mutation. Nothing was changed when one is returned.
type CartError struct {
	Code    ErrCode
	Message string
}

func (e *CartError) Error() string {
	return e.Message
}

func NewInvalidArgument(message string) *CartError {
	return &CartError{Code: CodeInvalidArgument, Message: message}
}

func NewInvalidArgumentf(format string, args ...any) *CartError {
	return &CartError{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(message string) *CartError {
	return &CartError{Code: CodeNotFound, Message: message}
}

// Code extracts the error code, or "" for errors that are not a CartError.
func Code(err error) ErrCode {
	var ce *CartError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// ValidateBookSelection enforces that a duration is present iff the mode is rent.
func ValidateBookSelection(bookID string, mode PurchaseMode, d RentDuration) error {
	if bookID == "" {
		return NewInvalidArgument(ErrMsgBookIDRequired)
	}
	switch mode {
	case ModeBuy:
		if d != 0 {
			return NewInvalidArgument(ErrMsgBuyTakesNoDuration)
		}
	case ModeRent:
		if !d.Valid() {
			return NewInvalidArgument(ErrMsgRentNeedsDuration)
		}
	default:
		return NewInvalidArgument(ErrMsgUnknownMode)
	}
	return nil
}

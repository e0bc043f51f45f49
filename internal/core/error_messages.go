package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. When users encounter errors, they can quote the error
// code to support staff for faster diagnosis.
//
// Typed errors are matched first (errors.As) and produce messages that name
// the field, table or row involved. Untyped errors fall back to
// case-insensitive pattern matching.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid value: A field failed validation
//	         Action: Correct the highlighted field and try again
//	         Type: *ValidationError, ValidationErrors
//
//	VAL002 - Invalid date: Date could not be read
//	         Action: Use dd-mm-yyyy, e.g. 15-03-2024
//	         Patterns: "invalid date"
//
//	VAL003 - Required field: A required value is empty
//	         Action: Fill in every field
//	         Patterns: "cannot be empty"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Header missing: Expected column header not found in the sheet
//	         Action: Restore the header row or restart to rewrite it
//	         Type: *sheet.HeaderNotFoundError
//
//	TBL002 - Unknown table: Table key is not stock or borrowed
//	         Action: Use one of the listed tables
//	         Type: ErrUnknownTable
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Row changed: The row was moved or removed since it was read
//	         Action: Search again and retry with the fresh result
//	         Type: *sheet.RowNotFoundError
//
//	DUP001 - Duplicate ISBN: Stock already holds this ISBN
//	         Action: Add copies to the existing entry instead
//	         Type: *DuplicateISBNError
//
//	PART001 - Partial failure: Only some steps of a checkout or return ran
//	          Action: Check both tables and fix the listed entry by hand
//	          Type: *PartialFailureError
//
// # Backend Errors (BE001-BE099)
//
//	BE001 - Not found: Spreadsheet or table does not exist
//	BE002 - Permission: Credentials cannot access the spreadsheet
//	BE003 - Unavailable: Backend is temporarily unavailable
//	BE004 - Backend failure: Backend rejected the request
//	        Type: *sheet.BackendError by Kind
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout
//	         Patterns: "context deadline exceeded", "timeout"
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
//	BUSY001 - Busy: Another change is still being written
//	          Patterns: "change is in progress"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. For PART001, find the op id in the message and grep the logs for it
//  3. If ERR000, check application logs for the original technical error

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/booksheet/internal/sheet"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages for errors that carry no type. The first matching pattern wins.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Date could not be read",
			Action:  "Use dd-mm-yyyy, e.g. 15-03-2024",
			Code:    "VAL002",
		},
	},
	{
		pattern: "cannot be empty",
		msg: UserMessage{
			Message: "A required value is empty",
			Action:  "Fill in every field",
			Code:    "VAL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "The spreadsheet may be slow; try again in a moment",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "The spreadsheet may be slow; try again in a moment",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "change is in progress",
		msg: UserMessage{
			Message: "Another change is still being saved",
			Action:  "Wait a few seconds and try again",
			Code:    "BUSY001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := svc.AddCopies(ctx, staleRecord, 1)
//	msg := MapError(err)
//	// msg.Code == "ROW001"
//	// msg.Message == `Row 4 of stock changed since it was read: row no longer exists`
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		partial  *PartialFailureError
		dup      *DuplicateISBNError
		verrs    ValidationErrors
		verr     *ValidationError
		header   *sheet.HeaderNotFoundError
		notFound *sheet.RowNotFoundError
		backend  *sheet.BackendError
	)

	// PartialFailureError wraps the step's cause, so it is checked first.
	switch {
	case errors.As(err, &partial):
		return UserMessage{
			Message: fmt.Sprintf("The %s only partly completed: %s", strings.ReplaceAll(partial.Op, "_", " "), partial.Effect),
			Action:  fmt.Sprintf("Check both tables and fix the entry by hand (reference %s)", partial.OpID),
			Code:    "PART001",
		}, true

	case errors.As(err, &dup):
		return UserMessage{
			Message: fmt.Sprintf("ISBN %s is already in stock at row %d", dup.ISBN, dup.CellRow),
			Action:  "Add copies to the existing entry instead",
			Code:    "DUP001",
		}, true

	case errors.As(err, &verrs):
		parts := make([]string, len(verrs))
		for i, ve := range verrs {
			parts[i] = validationText(ve)
		}
		return UserMessage{
			Message: strings.Join(parts, "; "),
			Action:  "Correct the listed fields and try again",
			Code:    "VAL001",
		}, true

	case errors.As(err, &verr):
		return UserMessage{
			Message: validationText(verr),
			Action:  "Correct the field and try again",
			Code:    "VAL001",
		}, true

	case errors.As(err, &header):
		return UserMessage{
			Message: fmt.Sprintf("Column %q is missing from the %s sheet", header.Header, header.Table),
			Action:  "Restore the header row or restart the service to rewrite it",
			Code:    "TBL001",
		}, true

	case errors.Is(err, ErrUnknownTable):
		return UserMessage{
			Message: "Unknown table",
			Action:  "Use stock or borrowed",
			Code:    "TBL002",
		}, true

	case errors.As(err, &notFound):
		msg := fmt.Sprintf("Row %d of %s changed since it was read", notFound.Row, notFound.Table)
		if notFound.Reason != "" {
			msg += ": " + notFound.Reason
		}
		return UserMessage{
			Message: msg,
			Action:  "Search again and retry with the fresh result",
			Code:    "ROW001",
		}, true

	case errors.As(err, &backend):
		return backendMessage(backend), true
	}
	return UserMessage{}, false
}

func validationText(ve *ValidationError) string {
	if ve.Field == "" {
		return ve.Message
	}
	label := strings.ReplaceAll(string(ve.Field), "_", " ")
	if ve.Value == "" {
		return fmt.Sprintf("%s %s", label, ve.Message)
	}
	return fmt.Sprintf("%s %q %s", label, ve.Value, ve.Message)
}

func backendMessage(be *sheet.BackendError) UserMessage {
	switch be.Kind {
	case sheet.KindNotFound:
		return UserMessage{
			Message: fmt.Sprintf("The %s sheet could not be found", be.Table),
			Action:  "Check the spreadsheet id in the configuration",
			Code:    "BE001",
		}
	case sheet.KindPermission:
		return UserMessage{
			Message: fmt.Sprintf("Access to the %s sheet was denied", be.Table),
			Action:  "Share the spreadsheet with the service account",
			Code:    "BE002",
		}
	case sheet.KindTransient:
		return UserMessage{
			Message: fmt.Sprintf("The spreadsheet is temporarily unavailable (%s on %s)", be.Op, be.Table),
			Action:  "Please try again in a few moments",
			Code:    "BE003",
		}
	}
	return UserMessage{
		Message: fmt.Sprintf("The spreadsheet rejected %s on %s", be.Op, be.Table),
		Action:  "Please try again or contact support",
		Code:    "BE004",
	}
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

package core

// error_messages.go maps errors to messages a user can act on. Each has a
// code for support reference:
//
//	TBL001 - Table not found: the selector matched nothing
//	TBL002 - Widget not found: unknown or removed widget id
//	TBL003 - Not a table: the selector matched a non-table element
//	TBL004 - No headers: the table has no header row
//	TBL005 - Invalid options: sort options failed validation
//	FILE001 - File too large
//	FILE002 - Unsupported format: not .html, .csv, .xlsx or .docx
//	FILE003 - Empty file: no header row
//	FILE004 - Invalid CSV
//	FILE005 - No file in the request
//	SRC001 - Source failure: the query or workbook could not be read
//	SRC002 - No database configured
//	SRC003 - Busy: too many loads in progress
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	REQ003 - Malformed request parameters
//	RATE001 - Rate limited
//	ERR000 - Anything else; check the logs for the technical error
//
// Sentinel errors are matched with errors.Is first. Other errors fall back
// to case-insensitive substring patterns, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tablesort/internal/sorter"
	"github.com/JonMunkholm/tablesort/internal/source"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

var (
	msgTableNotFound = UserMessage{
		Message: "No table matched the selector",
		Action:  "Check the selector, or leave it empty to use the first table",
		Code:    "TBL001",
	}
	msgWidgetNotFound = UserMessage{
		Message: "Table not found",
		Action:  "It may have been removed. Load it again",
		Code:    "TBL002",
	}
	msgNotTable = UserMessage{
		Message: "The selector matched an element that is not a table",
		Action:  "Point the selector at a <table> element",
		Code:    "TBL003",
	}
	msgNoHeaders = UserMessage{
		Message: "The table has no header row",
		Action:  "Add a <thead> row or a first row of <th> cells",
		Code:    "TBL004",
	}
	msgInvalidOptions = UserMessage{
		Message: "The sort options are invalid",
		Action:  "Check the options file against the documented fields",
		Code:    "TBL005",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Upload a smaller file or split it",
		Code:    "FILE001",
	}
	msgUnsupportedFormat = UserMessage{
		Message: "Unsupported file format",
		Action:  "Upload an .html, .csv, .xlsx or .docx file",
		Code:    "FILE002",
	}
	msgEmptyFile = UserMessage{
		Message: "The file is empty",
		Action:  "Upload a file with a header row",
		Code:    "FILE003",
	}
	msgNoDatabase = UserMessage{
		Message: "No database is configured",
		Action:  "Set DATABASE_URL and restart the server",
		Code:    "SRC002",
	}
	msgBusy = UserMessage{
		Message: "The server is busy loading other tables",
		Action:  "Please wait a moment and try again",
		Code:    "SRC003",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or a narrower query",
		Code:    "REQ002",
	}
)

// sentinels are checked in order with errors.Is.
var sentinels = []struct {
	err error
	msg UserMessage
}{
	{ErrWidgetNotFound, msgWidgetNotFound},
	{sorter.ErrTableNotFound, msgTableNotFound},
	{sorter.ErrNotTable, msgNotTable},
	{sorter.ErrNoHeaders, msgNoHeaders},
	{sorter.ErrInvalidOptions, msgInvalidOptions},
	{source.ErrUnsupportedFormat, msgUnsupportedFormat},
	{source.ErrEmptyFile, msgEmptyFile},
	{ErrNoDatabase, msgNoDatabase},
	{ErrTooManyLoads, msgBusy},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns match errors that carry no sentinel, such as those from
// net/http, encoding/csv and the database driver.
var errorPatterns = []errorPattern{
	{"request body too large", msgFileTooLarge},
	{"file too large", msgFileTooLarge},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Select a file to upload",
			Code:    "FILE005",
		},
	},
	{
		pattern: "open xlsx",
		msg: UserMessage{
			Message: "The workbook could not be read",
			Action:  "Save the file as .xlsx and try again",
			Code:    "SRC001",
		},
	},
	{
		pattern: "open docx",
		msg: UserMessage{
			Message: "The document could not be read",
			Action:  "Save the file as .docx and try again",
			Code:    "SRC001",
		},
	},
	{
		pattern: "query",
		msg: UserMessage{
			Message: "The query failed",
			Action:  "Check the SQL and the table name",
			Code:    "SRC001",
		},
	},
	{"timeout", msgTimeout},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request was malformed",
			Action:  "Check the column index and direction",
			Code:    "REQ003",
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
}

// defaultMessage is ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user message. A nil error yields the zero
// UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	// Already mapped.
	var uerr *UserError
	if errors.As(err, &uerr) {
		return uerr.User
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message. Error returns
// the user message; Unwrap returns the technical error for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

package service

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeColumnLimit        = "COLUMN_LIMIT"
	CodeColumnNotEmpty     = "COLUMN_NOT_EMPTY"
	CodeLastColumn         = "LAST_COLUMN"
	CodeNotMember          = "NOT_MEMBER"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeRateLimited        = "RATE_LIMITED"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func WrapError(domainError *DomainError, err error) error {
	return &DomainError{
		Code:    domainError.Code,
		Message: domainError.Message,
		Err:     err,
	}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func invalidInput(message string) *DomainError {
	return &DomainError{Code: CodeInvalidInput, Message: message}
}

var (
	// NOT_FOUND
	ErrUserNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "User not found",
	}
	ErrBoardNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "Board not found",
	}
	ErrColumnNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "Column not found",
	}
	ErrTicketNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "Ticket not found",
	}
	ErrCommentNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "Comment not found",
	}
	ErrNotificationNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "Notification not found",
	}

	// USER_EXISTS
	ErrUserExists = &DomainError{
		Code:    CodeUserExists,
		Message: "User already exists",
	}

	// INVALID_CREDENTIALS
	ErrInvalidCredentials = &DomainError{
		Code:    CodeInvalidCredentials,
		Message: "Invalid credentials",
	}

	// UNAUTHORIZED
	ErrTokenRequired = &DomainError{
		Code:    CodeUnauthorized,
		Message: "Authentication token required",
	}
	ErrUnknownUser = &DomainError{
		Code:    CodeUnauthorized,
		Message: "User not found",
	}

	// INVALID_TOKEN
	ErrInvalidToken = &DomainError{
		Code:    CodeInvalidToken,
		Message: "Invalid token",
	}

	// FORBIDDEN
	ErrForbidden = &DomainError{
		Code:    CodeForbidden,
		Message: "Not allowed",
	}

	// COLUMN_LIMIT
	ErrColumnLimit = &DomainError{
		Code:    CodeColumnLimit,
		Message: "Maximum of 6 columns allowed per board",
	}

	// COLUMN_NOT_EMPTY
	ErrColumnNotEmpty = &DomainError{
		Code:    CodeColumnNotEmpty,
		Message: "Cannot delete a column that contains tickets",
	}

	// LAST_COLUMN
	ErrLastColumn = &DomainError{
		Code:    CodeLastColumn,
		Message: "Cannot delete the last column. At least one column is required.",
	}

	// NOT_MEMBER
	ErrAssigneeNotMember = &DomainError{
		Code:    CodeNotMember,
		Message: "Assignee must be a board member",
	}
	ErrWatcherNotMember = &DomainError{
		Code:    CodeNotMember,
		Message: "User must be a board member",
	}

	// PAYLOAD_TOO_LARGE
	ErrImageTooLarge = &DomainError{
		Code:    CodePayloadTooLarge,
		Message: "Profile image must not exceed 5 MB",
	}

	// RATE_LIMITED
	ErrRateLimited = &DomainError{
		Code:    CodeRateLimited,
		Message: "Too Many Requests",
	}

	// INVALID_INPUT
	ErrInvalidInput         = invalidInput("invalid input")
	ErrMissingIP            = invalidInput("Invalid request: IP address not found")
	ErrNoColumns            = invalidInput("No columns found in board")
	ErrForeignColumn        = invalidInput("Column does not belong to this board")
	ErrInvalidReorder       = invalidInput("columnIds must contain every board column exactly once")
	ErrColumnOrderTaken     = invalidInput("Column order is already taken")
	ErrMissingCredential    = invalidInput("Missing Google credential")
	ErrInvalidGoogleToken   = invalidInput("Invalid Google token")
	ErrGoogleNotConfigured  = invalidInput("Google login is not configured")
	ErrStorageNotConfigured = invalidInput("Profile image storage is not configured")
	ErrInvalidImage         = invalidInput("Profile image must be an image file")
)

// parseID проверяет что идентификатор это UUID
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

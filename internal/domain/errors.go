package domain

import (
	"errors"
	"net/http"
)

// Kind clasifica los errores de dominio para traducirlos en el borde HTTP.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindDependency
)

// Status devuelve el codigo HTTP asociado al tipo de error.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error es un error de dominio con un mensaje apto para el cliente.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf devuelve el Kind del primer *Error en la cadena, o KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// PublicMessage devuelve el mensaje seguro para exponer al cliente.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind != KindInternal {
		return de.Message
	}
	return "Internal server error"
}

var (
	ErrMissingField         = &Error{Kind: KindValidation, Message: "Username, email, and password are required."}
	ErrMissingCredentials   = &Error{Kind: KindValidation, Message: "Email and password are required."}
	ErrInvalidEmail         = &Error{Kind: KindValidation, Message: "Invalid email address."}
	ErrInvalidGender        = &Error{Kind: KindValidation, Message: "Gender must be male or female."}
	ErrInvalidImage         = &Error{Kind: KindValidation, Message: "Only image uploads are allowed."}
	ErrImageTooLarge        = &Error{Kind: KindValidation, Message: "Image is too large."}
	ErrImageRequired        = &Error{Kind: KindValidation, Message: "Image required."}
	ErrEmptyText            = &Error{Kind: KindValidation, Message: "Text is required."}
	ErrInvalidID            = &Error{Kind: KindValidation, Message: "Invalid id."}
	ErrDuplicateEmail       = &Error{Kind: KindConflict, Message: "Email already in use. Try a different one."}
	ErrSelfFollow           = &Error{Kind: KindConflict, Message: "You cannot follow/unfollow yourself."}
	ErrSelfMessage          = &Error{Kind: KindConflict, Message: "You cannot message yourself."}
	ErrInvalidCredentials   = &Error{Kind: KindAuth, Message: "Incorrect email or password."}
	ErrUnauthenticated      = &Error{Kind: KindAuth, Message: "User not authenticated."}
	ErrForbidden            = &Error{Kind: KindForbidden, Message: "You are not allowed to do that."}
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "User not found."}
	ErrPostNotFound         = &Error{Kind: KindNotFound, Message: "Post not found."}
	ErrTooManyAttempts      = &Error{Kind: KindRateLimited, Message: "Too many login attempts. Try again later."}
	ErrImageUploadFailed    = &Error{Kind: KindDependency, Message: "Image upload failed."}
	ErrServiceNotConfigured = &Error{Kind: KindInternal, Message: "service not configured"}
)

package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a domain failure on the wire. The Spanish values are part
// of the public API contract and must not be renamed.
type Code string

const (
	// Not-found family, surfaced as 404.
	CodeContractorNotFound  Code = "CONTRATISTA_NO_ENCONTRADO"
	CodeBadgeNotFound       Code = "GAFETE_NO_ENCONTRADO"
	CodeUserNotFound        Code = "USUARIO_NO_ENCONTRADO"
	CodeActiveEntryNotFound Code = "INGRESO_ACTIVO_NO_ENCONTRADO"
	CodeEntryNotFound       Code = "INGRESO_NO_ENCONTRADO"
	CodeNotFound            Code = "RECURSO_NO_ENCONTRADO"

	// Business-rule family, surfaced as 400.
	CodeContractorBlacklisted Code = "CONTRATISTA_LISTA_NEGRA"
	CodePermitExpired         Code = "PRAIND_VENCIDO"
	CodeActiveEntryExists     Code = "INGRESO_ACTIVO_EXISTENTE"
	CodeBadgeUnavailable      Code = "GAFETE_NO_DISPONIBLE"
	CodeBadgeInUse            Code = "GAFETE_EN_USO"
	CodeBadRequest            Code = "SOLICITUD_INVALIDA"

	CodeConflict     Code = "CONFLICTO"
	CodeUnauthorized Code = "NO_AUTORIZADO"
	CodeInternal     Code = "ERROR_INTERNO"
)

// Error carries a domain code alongside a human-readable message. Services
// raise these; handlers translate them into the JSON error envelope.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a domain code to an underlying error while keeping the
// cause reachable through errors.Unwrap.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given domain code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// anything that is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HTTPStatus maps a domain code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeContractorNotFound, CodeBadgeNotFound, CodeUserNotFound,
		CodeActiveEntryNotFound, CodeEntryNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeContractorBlacklisted, CodePermitExpired, CodeActiveEntryExists,
		CodeBadgeUnavailable, CodeBadgeInUse, CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

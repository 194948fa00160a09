package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError turns a persistence error into a status, code and message that are
// safe to show. resource names the entity involved, e.g. "product".
func ParseError(err error, resource string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "Something went wrong"}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: notFoundMessage(resource)}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicateKey(err.Error(), resource)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceConflict, Message: "The record is referenced by other data"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return duplicateKey(pgErr.ConstraintName, resource)
		case pgForeignKeyViolation:
			if strings.Contains(pgErr.Detail, "still referenced") {
				return ErrorInfo{Status: http.StatusConflict, Code: ResourceConflict, Message: "The record is referenced by other data"}
			}
			return ErrorInfo{Status: http.StatusBadRequest, Code: ResourceNotFound, Message: "A referenced record does not exist"}
		case pgNotNullViolation:
			return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: pgErr.ColumnName + " is required"}
		case pgCheckViolation:
			return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: "A value is out of range"}
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalExternalAPI,
			Message: "A dependent service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: "Something went wrong. Please try again later",
	}
}

func duplicateKey(detail, resource string) ErrorInfo {
	detail = strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "email"):
		return ErrorInfo{Status: http.StatusConflict, Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	case strings.Contains(detail, "reviews") || resource == "review":
		return ErrorInfo{Status: http.StatusConflict, Code: ReviewAlreadyExists, Message: "You have already submitted a review for this item."}
	case strings.Contains(detail, "categories") || resource == "category":
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "A category with this name already exists"}
	}
	return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "The record already exists"}
}

func notFoundMessage(resource string) string {
	if resource == "" {
		return "The requested resource was not found"
	}
	r := strings.ReplaceAll(resource, "_", " ")
	return strings.ToUpper(r[:1]) + r[1:] + " not found"
}

// ParseAndRespond writes the ParseError result as the response.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, resource string) {
	info := ParseError(err, resource)
	c.JSON(info.Status, ErrorResponse{Error: info.Code, Message: info.Message})
}

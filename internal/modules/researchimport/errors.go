package researchimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/osteobridge-backend/internal/ingestion/tabular"
	errs "github.com/yungbote/osteobridge-backend/internal/pkg/errors"
)

// SchemaError is returned before any transaction is opened.
type SchemaError = tabular.SchemaError

// ValidationError describes a malformed cell. No cell problem is currently
// fatal: the linker logs these and skips the affected segment.
type ValidationError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d column %s: %s (%q)", e.Line, e.Column, e.Reason, e.Value)
}

// PersistenceError wraps a database failure. The transaction has been rolled
// back when it is returned.
type PersistenceError struct {
	Step string
	// Conflict is set when the cause is a unique-constraint violation,
	// typically a concurrent import of the same names or tuples.
	Conflict bool
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("import failed during %s: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets callers match conflicts with errors.Is(err, errs.ErrConflict).
func (e *PersistenceError) Is(target error) bool {
	return e.Conflict && target == errs.ErrConflict
}

// PublicMessage is safe to return to callers; the cause is only logged.
func (e *PersistenceError) PublicMessage() string {
	if e.Conflict {
		return "Import conflicted with a concurrent change; no data was saved. Please retry."
	}
	return "Import failed; no data was saved."
}

func newPersistenceError(step string, err error) *PersistenceError {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe
	}
	return &PersistenceError{Step: step, Conflict: IsUniqueViolation(err), Err: err}
}

// IsUniqueViolation recognises unique-constraint failures from either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

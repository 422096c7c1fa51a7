package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the stores react to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeAdminShutdown        = "57P01"

	// A malformed uuid cannot name any row.
	codeInvalidTextRepresentation = "22P02"
)

// activeContractIndex is the partial unique index allowing one active contract per item.
const activeContractIndex = "rental_contracts_one_active_per_item"

// classify maps driver errors onto domain kinds. Errors that already carry a
// domain kind are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			if pqErr.Constraint == activeContractIndex {
				return fmt.Errorf("%w: %w", domain.ErrItemUnavailable, err)
			}
			return fmt.Errorf("%w: %s: %w", domain.ErrDuplicateKey, pqErr.Constraint, err)
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case codeInvalidTextRepresentation:
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		case codeQueryCanceled, codeAdminShutdown:
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}
		if strings.HasPrefix(string(pqErr.Code), "08") {
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}
	return err
}

// notFoundIfNoRows reports a missing row for UPDATE and DELETE statements.
func notFoundIfNoRows(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	logger.DatabaseResult(what, n, err, "id", id)
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern for ILIKE.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

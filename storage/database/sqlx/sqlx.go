// Package sqlxrepos implements the domain repositories on PostgreSQL.
// Repositories hold a default executor and run against a transactional one
// when a service passes it in.
package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
)

const (
	pqUniqueViolation = pq.ErrorCode("23505")
	pqFKViolation     = pq.ErrorCode("23503")
)

// trapConflictErr maps psql unique and foreign key violations to a
// core.ConflictError carrying the violated constraint name.
func trapConflictErr(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation, pqFKViolation:
			return core.NewConflictError(err, pqErr.Constraint)
		}
	}
	return errors.Wrap(err, msg)
}

func orderBy(ordering []core.DBOrdering, dflt string) string {
	if len(ordering) == 0 {
		return dflt
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}

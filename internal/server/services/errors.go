package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tijori/tijori/internal/common"
	"github.com/tijori/tijori/internal/logging"
)

var passthrough = []error{
	common.ErrorNotFound,
	common.ErrorAlreadyExists,
	common.ErrorValidation,
	common.ErrorUnauthorized,
	common.ErrAccountGone,
}

// mapError returns domain errors unchanged and collapses everything else
// into common.ErrorInternal after logging it.
func mapError(ctx context.Context, log logging.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}
	log.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

// validID reports whether id can name a stored row. Anything else is
// treated as absent rather than sent to the database.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// uniqueIDs drops blanks and repeats, keeping the first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

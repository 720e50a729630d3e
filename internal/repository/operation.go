package repository

import (
	"context"
	"errors"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
	"github.com/sandeepkv93/bazar-universal-api/internal/observability"
)

func recordOperation(ctx context.Context, entity, op string, err error, notFound ...error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if errors.Is(err, domain.ErrSaleTotalOutOfRange) {
			outcome = "rejected"
		}
		for _, nf := range notFound {
			if errors.Is(err, nf) {
				outcome = "not_found"
				break
			}
		}
	}
	observability.RecordRepositoryOperation(ctx, entity, op, outcome)
}

package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Validator resolves a promotion code to a live promotion record, rejecting
// unknown and expired codes.
type Validator interface {
	ValidateCode(ctx context.Context, code string) (*Promotion, error)
}

// RepoValidator implements Validator by looking up promotions in a Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// ValidateCode looks up the promotion for the given code and checks temporal
// validity. It returns ErrInvalidCode for unknown codes and ErrExpired for
// promotions past their valid-until instant. The lookup is read-only.
func (v *RepoValidator) ValidateCode(ctx context.Context, code string) (*Promotion, error) {
	p, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup promotion")
	}

	if !p.IsValid(v.now()) {
		return nil, ErrExpired
	}

	return p, nil
}

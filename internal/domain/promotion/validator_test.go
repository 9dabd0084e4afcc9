package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	Repository

	byCode map[string]*Promotion
	err    error
}

func (m *mockRepo) FindByCode(_ context.Context, code string) (*Promotion, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func newValidator(repo *mockRepo) *RepoValidator {
	v := NewRepoValidator(repo)
	v.now = func() time.Time { return fixedNow }
	return v
}

func TestValidateCode_Valid(t *testing.T) {
	promo := &Promotion{
		ID:            "promo-1",
		Code:          "SUMMER20",
		DiscountType:  DiscountPercentage,
		DiscountValue: decPtr("20"),
		ValidUntil:    fixedNow.Add(24 * time.Hour),
	}
	v := newValidator(&mockRepo{byCode: map[string]*Promotion{"SUMMER20": promo}})

	got, err := v.ValidateCode(context.Background(), "SUMMER20")
	require.NoError(t, err)
	assert.Equal(t, "promo-1", got.ID)
}

func TestValidateCode_Unknown(t *testing.T) {
	v := newValidator(&mockRepo{byCode: map[string]*Promotion{}})

	_, err := v.ValidateCode(context.Background(), "BOGUS")
	require.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, "Invalid promotion code", err.Error())
}

func TestValidateCode_Expired(t *testing.T) {
	promo := &Promotion{
		ID:         "promo-old",
		Code:       "WINTER10",
		ValidUntil: fixedNow.Add(-time.Hour),
	}
	v := newValidator(&mockRepo{byCode: map[string]*Promotion{"WINTER10": promo}})

	_, err := v.ValidateCode(context.Background(), "WINTER10")
	require.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, "Promotion has expired", err.Error())
}

func TestValidateCode_RepoError(t *testing.T) {
	v := newValidator(&mockRepo{err: errors.New("connection reset")})

	_, err := v.ValidateCode(context.Background(), "SUMMER20")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCode)
}

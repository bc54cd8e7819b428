package validation

import (
	"errors"
	"testing"

	"servetix/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name  string `json:"buyer_name" validate:"required,max=5"`
	Email string `json:"buyer_email" validate:"required,email"`
}

type order struct {
	Contact  contact `json:"contact"`
	Quantity int     `json:"quantity" validate:"gt=0"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(order{Contact: contact{Name: "Ana", Email: "ana@example.com"}, Quantity: 1}))

	err := Struct(order{Contact: contact{Name: "Too long", Email: "nope"}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "must be at most 5 characters", appErr.Fields["contact.buyer_name"])
	assert.Equal(t, "must be a valid email address", appErr.Fields["contact.buyer_email"])
	assert.Equal(t, "must be greater than 0", appErr.Fields["quantity"])
}

package sales_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/sales"
)

func TestRemaining_PagoParcial(t *testing.T) {
	r, err := sales.Remaining(decimal.NewFromInt(1500), decimal.NewFromFloat(499.99))
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.NewFromFloat(1000.01)), "saldo esperado 1000.01, obtenido %s", r)
}

func TestRemaining_PagoCompleto(t *testing.T) {
	r, err := sales.Remaining(decimal.NewFromInt(800), decimal.NewFromInt(800))
	require.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestRemaining_Invalidos(t *testing.T) {
	cases := []struct {
		name          string
		gross, cashIn decimal.Decimal
	}{
		{"bruto cero", decimal.Zero, decimal.Zero},
		{"bruto negativo", decimal.NewFromInt(-1), decimal.Zero},
		{"cobrado negativo", decimal.NewFromInt(100), decimal.NewFromInt(-5)},
		{"cobrado mayor que bruto", decimal.NewFromInt(100), decimal.NewFromInt(101)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sales.Remaining(tc.gross, tc.cashIn)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

package performance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/CRM-api/internal/domain/performance"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestEvaluate_SinFechaLimite(t *testing.T) {
	r := performance.Evaluate(nil, date(2026, 3, 1, 10))
	assert.True(t, r.OnTime)
	assert.False(t, r.Strike)
}

func TestEvaluate_MismoDiaEsATiempo(t *testing.T) {
	due := date(2026, 3, 10, 0)
	r := performance.Evaluate(&due, date(2026, 3, 10, 23))
	assert.True(t, r.OnTime)
	assert.Zero(t, r.DaysLate)
}

func TestEvaluate_DiaSiguienteEsTarde(t *testing.T) {
	due := date(2026, 3, 10, 0)
	r := performance.Evaluate(&due, date(2026, 3, 11, 9))
	assert.False(t, r.OnTime)
	assert.Equal(t, 1, r.DaysLate)
	assert.True(t, r.Strike)
}

func TestEvaluate_VariosDiasTarde(t *testing.T) {
	due := date(2026, 3, 10, 0)
	r := performance.Evaluate(&due, date(2026, 3, 14, 12))
	assert.Equal(t, 4, r.DaysLate)
}

func TestOnTimeRate(t *testing.T) {
	assert.Equal(t, 0.0, performance.OnTimeRate(0, 0))
	assert.Equal(t, 66.67, performance.OnTimeRate(2, 3))
	assert.Equal(t, 100.0, performance.OnTimeRate(4, 4))
}

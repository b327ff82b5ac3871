package ledger

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/portal"
)

const testPaymentDoc = "160522000012022OB800123"

func TestCalculator_Attribute(t *testing.T) {
	response := []model.ImpactedCommitment{
		{Commitment: "other", PaidValue: "99,99"},
		{Commitment: "X", PaidValue: "1.500,00", PaidArrearsValue: "0,00", SettledValue: "1.500,00"},
	}

	tests := []struct {
		name       string
		commitment string
		phase      model.Phase
		want       string
	}{
		{
			name:       "payment sums paid and arrears fields",
			commitment: "X",
			phase:      model.PhasePayment,
			want:       "1500.00",
		},
		{
			name:       "settlement reads the settled field",
			commitment: "X",
			phase:      model.PhaseSettlement,
			want:       "1500.00",
		},
		{
			name:       "absent commitment attributes zero",
			commitment: "Y",
			phase:      model.PhasePayment,
			want:       "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := portal.NewMockQuerier()
			mock.ImpactedCommitmentsFn = func(_ context.Context, _ string, _ model.Phase) ([]model.ImpactedCommitment, error) {
				return response, nil
			}

			calc := newTestCalculator(mock)

			got, err := calc.Attribute(context.Background(), testPaymentDoc, tt.phase, tt.commitment)
			require.NoError(t, err)
			assertAmount(t, tt.want, got)

			require.Len(t, mock.ImpactedCommitmentsCalls, 1)
			assert.Equal(t, testPaymentDoc, mock.ImpactedCommitmentsCalls[0].DocumentCode)
			assert.Equal(t, tt.phase, mock.ImpactedCommitmentsCalls[0].Phase)
		})
	}
}

func TestCalculator_Attribute_ArrearsAdded(t *testing.T) {
	mock := portal.NewMockQuerier()
	mock.ImpactedCommitmentsFn = func(_ context.Context, _ string, _ model.Phase) ([]model.ImpactedCommitment, error) {
		return []model.ImpactedCommitment{
			{Commitment: "X", PaidValue: "1.000,00", PaidArrearsValue: "234,56"},
		}, nil
	}

	calc := newTestCalculator(mock)

	got, err := calc.Attribute(context.Background(), testPaymentDoc, model.PhasePayment, "X")
	require.NoError(t, err)
	assertAmount(t, "1234.56", got)
}

func TestCalculator_Attribute_FirstMatchWins(t *testing.T) {
	mock := portal.NewMockQuerier()
	mock.ImpactedCommitmentsFn = func(_ context.Context, _ string, _ model.Phase) ([]model.ImpactedCommitment, error) {
		return []model.ImpactedCommitment{
			{Commitment: "X", PaidValue: "100,00"},
			{Commitment: "X", PaidValue: "999,00"},
		}, nil
	}

	calc := newTestCalculator(mock)

	got, err := calc.Attribute(context.Background(), testPaymentDoc, model.PhasePayment, "X")
	require.NoError(t, err)
	assertAmount(t, "100.00", got)
}

func TestCalculator_Attribute_OtherPhasesContributeNothing(t *testing.T) {
	mock := portal.NewMockQuerier()

	calc := newTestCalculator(mock)

	got, err := calc.Attribute(context.Background(), testPaymentDoc, model.PhaseCommitment, "X")
	require.NoError(t, err)
	assertAmount(t, "0", got)
	assert.Empty(t, mock.ImpactedCommitmentsCalls, "commitment phase must not trigger a query")
}

func TestCalculator_Attribute_RetriesTransientFailures(t *testing.T) {
	mock := portal.NewMockQuerier()
	calls := 0
	mock.ImpactedCommitmentsFn = func(_ context.Context, _ string, _ model.Phase) ([]model.ImpactedCommitment, error) {
		calls++
		if calls < 3 {
			return nil, &portal.QueryError{Endpoint: "despesas/empenhos-impactados", Page: 1, Status: http.StatusBadGateway}
		}
		return []model.ImpactedCommitment{{Commitment: "X", PaidValue: "10,00"}}, nil
	}

	calc := newTestCalculator(mock)

	got, err := calc.Attribute(context.Background(), testPaymentDoc, model.PhasePayment, "X")
	require.NoError(t, err)
	assertAmount(t, "10.00", got)
	assert.Equal(t, 3, calls)
}

func TestCalculator_Attribute_FailureIsFatal(t *testing.T) {
	mock := portal.NewMockQuerier()
	mock.ImpactedCommitmentsFn = func(_ context.Context, _ string, _ model.Phase) ([]model.ImpactedCommitment, error) {
		return nil, &portal.QueryError{Endpoint: "despesas/empenhos-impactados", Page: 1, Status: http.StatusServiceUnavailable}
	}

	calc := newTestCalculator(mock)

	_, err := calc.Attribute(context.Background(), testPaymentDoc, model.PhasePayment, "X")
	require.Error(t, err)
	assert.Len(t, mock.ImpactedCommitmentsCalls, 3, "transient failures retry up to the attempt limit")
}

func TestCalculator_Attribute_NonRetryableFailsFast(t *testing.T) {
	mock := portal.NewMockQuerier()
	mock.ImpactedCommitmentsFn = func(_ context.Context, _ string, _ model.Phase) ([]model.ImpactedCommitment, error) {
		return nil, &portal.QueryError{Endpoint: "despesas/empenhos-impactados", Page: 1, Status: http.StatusBadRequest}
	}

	calc := newTestCalculator(mock)

	_, err := calc.Attribute(context.Background(), testPaymentDoc, model.PhasePayment, "X")
	require.Error(t, err)
	assert.Len(t, mock.ImpactedCommitmentsCalls, 1, "client errors must not be retried")
}

package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/testutil"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

func newService(t *testing.T) (*Service, repository.Store) {
	store := testutil.SeededStore(t)
	events := event.NewService(store.Outbox, testutil.Clock())
	return NewService(store.Payments, store.Patients, events, nil, 0, testutil.Clock()), store
}

func TestReference(t *testing.T) {
	assert.Equal(t, "CASH-006", Reference(model.PaymentMethodCash, 6))
	assert.Equal(t, "CHP-012", Reference(model.PaymentMethodChapa, 12))
	assert.Equal(t, "CASH-1234", Reference(model.PaymentMethodCash, 1234))
}

func TestRecordCashIsPaid(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	p, err := svc.Record(ctx, &model.RecordPaymentRequest{PatientID: 2, Amount: 300, PaymentMethod: model.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.ID)
	assert.Equal(t, "CASH-006", p.Reference)
	assert.Equal(t, model.PaymentStatusPaid, p.Status)
	assert.Equal(t, testutil.Now, p.CreatedAt)

	stored, err := store.Payments.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "CASH-006", stored.Reference)

	events, err := store.Outbox.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventPaymentRecorded, events[0].EventType)
}

func TestRecordChapaIsPendingUntilConfirmed(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.Record(ctx, &model.RecordPaymentRequest{PatientID: 3, Amount: 500, PaymentMethod: model.PaymentMethodChapa})
	require.NoError(t, err)
	assert.Equal(t, "CHP-006", p.Reference)
	assert.Equal(t, model.PaymentStatusPending, p.Status)

	confirmed, err := svc.Confirm(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, confirmed.Status)

	_, err = svc.Confirm(ctx, p.ID, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestConfirmFailure(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Confirm(context.Background(), 5, false)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, p.Status)
}

func TestRecordUnknownPatient(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Record(context.Background(), &model.RecordPaymentRequest{PatientID: 99, Amount: 500, PaymentMethod: model.PaymentMethodCash})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSummary(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sum, err := svc.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, testutil.Today, sum.Day)
	assert.Equal(t, int64(2000), sum.TotalCollected)
	assert.Equal(t, int64(500), sum.PendingAmount)
	assert.Equal(t, 5, sum.Count)

	empty, err := svc.Summary(ctx, "2024-12-10")
	require.NoError(t, err)
	assert.Zero(t, empty.Count)

	_, err = svc.Summary(ctx, "09/12/2024")
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

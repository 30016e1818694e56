package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisan-erp/artisan-erp/internal/factures"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
	"github.com/artisan-erp/artisan-erp/internal/notifications"
)

type fakeNotifRepo struct {
	created []notifications.Notification
}

func (f *fakeNotifRepo) Create(_ context.Context, n *notifications.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotifRepo) List(context.Context, notifications.ListNotificationsRequest) ([]notifications.Notification, int, error) {
	return nil, 0, nil
}
func (f *fakeNotifRepo) CountNonLues(context.Context, int64) (int, error)  { return 0, nil }
func (f *fakeNotifRepo) MarquerLue(context.Context, int64, int64) error    { return nil }
func (f *fakeNotifRepo) MarquerToutesLues(context.Context, int64) error    { return nil }

type fakeRetards struct {
	factures []factures.Facture
}

func (f *fakeRetards) ListNouveauxRetards(context.Context, time.Time, time.Time) ([]factures.Facture, error) {
	return f.factures, nil
}

func TestHandleSendEmail(t *testing.T) {
	sent := &mailer.NopMailer{}
	h := Handlers{Logger: slog.Default(), Mailer: sent}

	task, err := NewSendEmailTask(SendEmailPayload{To: "client@example.fr", Subject: "Votre devis", Body: "Bonjour"})
	require.NoError(t, err)
	require.NoError(t, h.HandleSendEmail(context.Background(), task))

	require.Len(t, sent.Sent, 1)
	assert.Equal(t, "client@example.fr", sent.Sent[0].To)
}

func TestHandleSendEmailPayloadInvalide(t *testing.T) {
	h := Handlers{Logger: slog.Default(), Mailer: &mailer.NopMailer{}}

	err := h.HandleSendEmail(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("pas du json")))
	assert.ErrorIs(t, err, asynq.SkipRetry, "un payload corrompu ne doit jamais être rejoué")
}

func TestHandleFactureRetardScanNotifie(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	retards := &fakeRetards{factures: []factures.Facture{
		{ID: 9, ArtisanID: 1, Numero: "FAC-2026-0009", DateEcheance: time.Now().AddDate(0, 0, -3)},
	}}
	h := Handlers{
		Logger:        slog.Default(),
		Notifications: notifications.NewService(slog.Default(), notifRepo),
		Retards:       retards,
	}

	require.NoError(t, h.HandleFactureRetardScan(context.Background(), asynq.NewTask(TaskTypeFactureRetardScan, nil)))
	require.Len(t, notifRepo.created, 1)
	n := notifRepo.created[0]
	assert.Equal(t, notifications.TypeFactureEnRetard, n.Type)
	assert.Contains(t, n.Message, "3 jour")
}

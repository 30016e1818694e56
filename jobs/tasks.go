package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/artisan-erp/artisan-erp/internal/contrats"
	"github.com/artisan-erp/artisan-erp/internal/factures"
	"github.com/artisan-erp/artisan-erp/internal/mailer"
	"github.com/artisan-erp/artisan-erp/internal/notifications"
	"github.com/artisan-erp/artisan-erp/internal/observability"
	"github.com/artisan-erp/artisan-erp/internal/relances"
)

const (
	QueueDefault = "default"
	QueueMail    = "mail"

	// TaskTypeSendEmail envoie un email transactionnel.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeRelanceScan lance les relances de devis planifiées (cron
	// horaire).
	TaskTypeRelanceScan = "relance:scan"
	// TaskTypeContratBilling facture les contrats échus (cron quotidien).
	TaskTypeContratBilling = "contrat:facturation"
	// TaskTypeFactureRetardScan notifie les factures passées en retard
	// (cron quotidien).
	TaskTypeFactureRetardScan = "facture:retard"
)

// SendEmailPayload describes a transactional email to dispatch.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Handlers groups the services the worker's tasks drive.
type Handlers struct {
	Logger        *slog.Logger
	Mailer        mailer.Mailer
	Relances      *relances.Service
	Contrats      *contrats.Service
	Notifications *notifications.Service
	Retards       RetardScanner
	Metrics       *observability.Metrics
}

// RetardScanner liste les factures passées en retard depuis la dernière
// passe. Implémenté par factures.Repository.
type RetardScanner interface {
	ListNouveauxRetards(ctx context.Context, depuis, jusqu time.Time) ([]factures.Facture, error)
}

func (h Handlers) observe(task string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.Metrics.ObserveJob(task, result)
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (h Handlers) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload mail:send: %v: %w", err, asynq.SkipRetry)
	}
	err := h.Mailer.Send(ctx, payload.To, payload.Subject, payload.Body)
	h.observe(TaskTypeSendEmail, err)
	return err
}

// HandleRelanceScan runs every artisan's scheduled reminder batch.
func (h Handlers) HandleRelanceScan(ctx context.Context, _ *asynq.Task) error {
	result, err := h.Relances.ExecuterScan(ctx)
	h.observe(TaskTypeRelanceScan, err)
	if err != nil {
		return err
	}
	h.Logger.Info("scan relances terminé",
		slog.Int("configs", result.Configs),
		slog.Int("lances", result.Lances),
		slog.Int("envoyees", result.Envoyees),
		slog.Int("erreurs", result.Erreurs))
	return nil
}

// HandleContratBilling bills every due maintenance contract.
func (h Handlers) HandleContratBilling(ctx context.Context, _ *asynq.Task) error {
	result, err := h.Contrats.FacturerEchues(ctx)
	h.observe(TaskTypeContratBilling, err)
	if err != nil {
		return err
	}
	h.Logger.Info("facturation contrats terminée",
		slog.Int("echus", result.Echus),
		slog.Int("factures", result.Factures),
		slog.Int("erreurs", result.Erreurs))
	return nil
}

// HandleFactureRetardScan notifies artisans of invoices that went overdue
// since the previous daily pass.
func (h Handlers) HandleFactureRetardScan(ctx context.Context, _ *asynq.Task) error {
	now := time.Now()
	retards, err := h.Retards.ListNouveauxRetards(ctx, now.AddDate(0, 0, -1), now)
	h.observe(TaskTypeFactureRetardScan, err)
	if err != nil {
		return err
	}
	for _, f := range retards {
		jours := int(now.Sub(f.DateEcheance).Hours() / 24)
		h.Notifications.FactureEnRetard(ctx, f.ArtisanID, f.ID, f.Numero, jours)
	}
	h.Logger.Info("scan factures en retard terminé", slog.Int("nouvelles", len(retards)))
	return nil
}

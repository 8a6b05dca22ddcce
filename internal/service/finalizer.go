package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"honeypot-api/internal/callback"
	"honeypot-api/internal/domain"
	"honeypot-api/internal/repository"
)

// FinalizerService corre la pasada final sobre una sesión que termina:
// re-extrae sobre el transcript completo, arma el reporte, lo archiva y
// dispara el callback externo. Todo es best-effort; los fallos se loguean
// y se tragan porque la remoción de la sesión ya ocurrió.
type FinalizerService struct {
	logger    *zap.Logger
	extractor *Extractor
	archive   repository.IntelligenceRepository
	notifier  callback.Notifier
}

// NewFinalizerService arma el finalizador. Archive y notifier son
// opcionales (nil = deshabilitado).
func NewFinalizerService(
	logger *zap.Logger,
	extractor *Extractor,
	archive repository.IntelligenceRepository,
	notifier callback.Notifier,
) *FinalizerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinalizerService{
		logger:    logger,
		extractor: extractor,
		archive:   archive,
		notifier:  notifier,
	}
}

// Finalize procesa el snapshot de una sesión terminada. Satisface
// session.Finalizer.
func (f *FinalizerService) Finalize(snapshot domain.SessionSnapshot) {
	report := f.BuildReport(snapshot)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if f.archive != nil {
		if err := f.archive.SaveReport(ctx, report); err != nil {
			f.logger.Warn("archiving final report failed",
				zap.String("session_id", snapshot.ID),
				zap.Error(err),
			)
		}
	}

	if f.notifier != nil {
		if err := f.notifier.SendFinalResult(ctx, report); err != nil {
			f.logger.Warn("final result callback failed",
				zap.String("session_id", snapshot.ID),
				zap.Error(err),
			)
		}
	}
}

// BuildReport re-extrae indicadores sobre el transcript completo del
// interlocutor y los une con lo acumulado turno a turno. La re-extracción
// es solo regex (pura): el LLM no participa en la pasada final.
func (f *FinalizerService) BuildReport(snapshot domain.SessionSnapshot) domain.FinalReport {
	merged := snapshot.Intelligence
	counterpartyMessages := 0
	for _, msg := range snapshot.Messages {
		if msg.Role != domain.RoleCounterparty {
			continue
		}
		counterpartyMessages++
		merged = merged.Union(f.extractor.Extract(msg.Content))
	}

	return domain.FinalReport{
		SessionID:     snapshot.ID,
		ScamDetected:  merged.Total() > 0,
		TotalMessages: len(snapshot.Messages),
		Intelligence:  merged,
		AgentNotes: fmt.Sprintf(
			"Engaged counterparty across %d messages (%d inbound); extracted %d unique indicators.",
			len(snapshot.Messages), counterpartyMessages, merged.Total(),
		),
		StartedAt: snapshot.CreatedAt,
		EndedAt:   time.Now().UTC(),
	}
}

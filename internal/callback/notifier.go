package callback

import (
	"context"
	"errors"

	"honeypot-api/internal/domain"
)

// Notifier define la interfaz para enviar el resultado final de una sesión
// al endpoint de evaluación externo. La entrega es best-effort, sin
// garantía exactly-once.
type Notifier interface {
	SendFinalResult(ctx context.Context, report domain.FinalReport) error
}

type disabledNotifier struct {
	reason string
}

func NewDisabledNotifier(reason string) Notifier {
	return &disabledNotifier{reason: reason}
}

func (n *disabledNotifier) SendFinalResult(_ context.Context, _ domain.FinalReport) error {
	if n.reason == "" {
		return errors.New("result notifier disabled")
	}
	return errors.New(n.reason)
}

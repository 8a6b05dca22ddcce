package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"honeypot-api/internal/domain"
	"honeypot-api/internal/session"
)

// Despedida fija al recibir un comando de salida; no pasa por el LLM.
const exitReply = "Okay, I have to go now. Bye! 👋"

var ErrEmptyMessage = errors.New("message cannot be empty")

// EngagementResult es la salida de un turno de conversación.
type EngagementResult struct {
	SessionID     string
	Created       bool
	Ended         bool
	Detection     domain.Detection
	Reply         string
	Intelligence  domain.Indicators
	TotalMessages int
}

// EngagementService orquesta un turno: resolución de sesión, detección de
// salida, clasificación, extracción, acumulación y respuesta de la persona.
// Los colaboradores lentos (clasificador, generador) están acotados por el
// contexto del request y sus fallos nunca corrompen el estado de la sesión.
type EngagementService struct {
	logger        *zap.Logger
	store         *session.Store
	detector      *ScamDetector
	persona       *PersonaGenerator
	extractor     *Extractor
	contextWindow int
}

// NewEngagementService arma el orquestador de turnos.
func NewEngagementService(
	logger *zap.Logger,
	store *session.Store,
	detector *ScamDetector,
	persona *PersonaGenerator,
	extractor *Extractor,
	contextWindow int,
) *EngagementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if contextWindow <= 0 {
		contextWindow = 10
	}
	return &EngagementService{
		logger:        logger,
		store:         store,
		detector:      detector,
		persona:       persona,
		extractor:     extractor,
		contextWindow: contextWindow,
	}
}

// HandleMessage procesa un mensaje entrante del interlocutor. Si no hay
// sessionID explícito, la identidad del caller decide la sesión (tracking
// implícito). Un comando de salida termina la sesión con pasada final y
// limpia el binding de identidad. El history provisto por el caller solo
// siembra sesiones recién creadas; la pasada final re-extrae sobre él.
func (s *EngagementService) HandleMessage(ctx context.Context, explicitID, callerIdentity, text string, history []domain.ConversationMessage) (EngagementResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return EngagementResult{}, ErrEmptyMessage
	}

	sess, created := s.store.GetOrCreate(explicitID, callerIdentity)
	if created {
		for _, m := range history {
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			sess.Append(m.Role, m.Content)
		}
	}

	if session.IsExitMessage(text) {
		sess.Append(domain.RoleCounterparty, text)
		snap := s.store.End(sess.ID(), true)
		s.store.ClearBinding(callerIdentity)

		result := EngagementResult{
			SessionID: sess.ID(),
			Created:   created,
			Ended:     true,
			Reply:     exitReply,
		}
		if snap != nil {
			result.Intelligence = snap.Intelligence
			result.TotalMessages = len(snap.Messages)
		}
		s.logger.Info("exit command received, session terminated",
			zap.String("session_id", sess.ID()),
			zap.Int("messages", result.TotalMessages),
		)
		return result, nil
	}

	sess.Append(domain.RoleCounterparty, text)

	detection := s.detector.Detect(ctx, text)
	indicators := s.extractor.ExtractWithFallback(ctx, text)
	sess.Accumulate(indicators)

	reply := ""
	if detection.IsScam {
		reply = s.persona.GenerateReply(ctx, text, sess.ContextWindow(s.contextWindow))
		sess.Append(domain.RoleAgent, reply)
	}

	snap := sess.Snapshot()
	s.logger.Info("turn processed",
		zap.String("session_id", sess.ID()),
		zap.Bool("is_scam", detection.IsScam),
		zap.Float64("confidence", detection.Confidence),
		zap.Int("new_indicators", indicators.Total()),
		zap.Int("total_indicators", snap.Intelligence.Total()),
		zap.Int("messages", len(snap.Messages)),
	)

	return EngagementResult{
		SessionID:     sess.ID(),
		Created:       created,
		Detection:     detection,
		Reply:         reply,
		Intelligence:  snap.Intelligence,
		TotalMessages: len(snap.Messages),
	}, nil
}

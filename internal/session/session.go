package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"honeypot-api/internal/domain"
)

// Session mantiene el estado de una conversación multi-turno con un presunto
// estafador: log de mensajes, inteligencia acumulada y marca de actividad.
// Los campos mutables están protegidos por un mutex propio; el contrato con
// los callers es que no intercalan dos turnos de la misma sesión en paralelo.
type Session struct {
	id        string
	createdAt time.Time

	mu             sync.Mutex
	messages       []domain.ConversationMessage
	bankAccounts   map[string]struct{}
	upiIDs         map[string]struct{}
	phoneNumbers   map[string]struct{}
	phishingURLs   map[string]struct{}
	lastActivityAt time.Time
}

// NewSession crea una sesión vacía con el id asignado por el servidor.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		id:             id,
		createdAt:      now,
		lastActivityAt: now,
		bankAccounts:   make(map[string]struct{}),
		upiIDs:         make(map[string]struct{}),
		phoneNumbers:   make(map[string]struct{}),
		phishingURLs:   make(map[string]struct{}),
	}
}

// ID devuelve el identificador estable de la sesión.
func (s *Session) ID() string {
	return s.id
}

// Append agrega un mensaje al log y actualiza la marca de actividad.
// Nunca falla; el log es append-only y los mensajes no se mutan después.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, domain.ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	s.lastActivityAt = time.Now().UTC()
}

// Accumulate une los indicadores recibidos con los ya acumulados, por tipo.
// Es idempotente y conmutativa: valores repetidos se guardan una sola vez y
// los tipos vacíos son un no-op.
func (s *Session) Accumulate(in domain.Indicators) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unionInto(s.bankAccounts, in.BankAccounts)
	unionInto(s.upiIDs, in.UPIIDs)
	unionInto(s.phoneNumbers, in.PhoneNumbers)
	unionInto(s.phishingURLs, in.PhishingURLs)
}

func unionInto(set map[string]struct{}, values []string) {
	for _, v := range values {
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
}

// ContextWindow devuelve los últimos max mensajes como líneas etiquetadas
// por hablante, listas para el prompt del generador de respuestas.
// Es de solo lectura y determinista dado el log.
func (s *Session) ContextWindow(max int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := "Scammer"
		if m.Role == domain.RoleAgent {
			label = "You (Honeypot)"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, m.Content))
	}
	return strings.Join(lines, "\n")
}

// MessageCount devuelve la cantidad de mensajes en el log.
func (s *Session) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// IsExpired indica si la sesión superó el timeout de inactividad.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().UTC().After(s.lastActivityAt.Add(timeout))
}

// Snapshot devuelve una proyección de solo lectura de la sesión: copia del
// log completo y de los indicadores acumulados, ordenados para determinismo.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]domain.ConversationMessage, len(s.messages))
	copy(msgs, s.messages)

	return domain.SessionSnapshot{
		ID:       s.id,
		Messages: msgs,
		Intelligence: domain.Indicators{
			BankAccounts: sortedValues(s.bankAccounts),
			UPIIDs:       sortedValues(s.upiIDs),
			PhoneNumbers: sortedValues(s.phoneNumbers),
			PhishingURLs: sortedValues(s.phishingURLs),
		},
		CreatedAt:      s.createdAt,
		LastActivityAt: s.lastActivityAt,
	}
}

func sortedValues(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

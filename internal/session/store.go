package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"honeypot-api/internal/domain"
)

// Finalizer se ejecuta con el snapshot de una sesión que termina (salida
// explícita o expiración). Es best-effort: sus fallos se manejan adentro y
// nunca bloquean la remoción de la sesión.
type Finalizer func(snapshot domain.SessionSnapshot)

// Store es el dueño exclusivo de las sesiones vivas y del binding
// identidad→sesión para tracking implícito. Todo acceso a los mapas pasa
// por un único mutex; no hay timer de fondo, el barrido de expiradas es
// perezoso y se dispara en cada lookup.
type Store struct {
	logger   *zap.Logger
	timeout  time.Duration
	finalize Finalizer

	mu       sync.Mutex
	sessions map[string]*Session
	bindings map[string]string
}

// NewStore crea un store vacío. El finalizer es opcional; si es nil, las
// sesiones terminadas se descartan sin pasada final.
func NewStore(logger *zap.Logger, timeout time.Duration, finalize Finalizer) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Store{
		logger:   logger,
		timeout:  timeout,
		finalize: finalize,
		sessions: make(map[string]*Session),
		bindings: make(map[string]string),
	}
}

// GetOrCreate resuelve la sesión para un request entrante. El orden de
// resolución es contrato: id explícito primero, después binding por
// identidad, y si nada vive, sesión nueva. Un id explícito desconocido o
// expirado NO se reutiliza como id de sesión (ese id siempre lo asigna el
// servidor): el id pedido queda ligado como alias a la sesión nueva, de
// modo que llamadas concurrentes con el mismo id nuevo convergen en una
// sola sesión. Devuelve la sesión y si fue recién creada.
func (st *Store) GetOrCreate(explicitID, callerIdentity string) (*Session, bool) {
	st.mu.Lock()
	expired := st.sweepLocked()

	key := explicitID
	if key == "" {
		key = callerIdentity
	}

	var s *Session
	created := false

	if key == "" {
		s = st.createLocked()
		created = true
	} else {
		if live, ok := st.sessions[key]; ok {
			s = live
		} else if id, ok := st.bindings[key]; ok {
			if live, ok := st.sessions[id]; ok {
				s = live
			}
		}
		if s == nil {
			s = st.createLocked()
			st.bindings[key] = s.ID()
			created = true
		}
	}
	st.mu.Unlock()

	st.finalizeAll(expired)

	if created {
		st.logger.Info("session created",
			zap.String("session_id", s.ID()),
			zap.Bool("bound_to_identity", explicitID == "" && callerIdentity != ""),
		)
	}
	return s, created
}

// End termina una sesión explícitamente: toma el snapshot, la remueve y
// limpia cualquier binding que apunte a ella. Un id desconocido no es un
// error, devuelve nil.
func (st *Store) End(id string, extractFinal bool) *domain.SessionSnapshot {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if !ok {
		st.mu.Unlock()
		return nil
	}
	delete(st.sessions, id)
	st.unbindLocked(id)
	st.mu.Unlock()

	snap := s.Snapshot()
	if extractFinal {
		st.runFinalizer(snap)
	}
	st.logger.Info("session ended",
		zap.String("session_id", id),
		zap.Int("messages", len(snap.Messages)),
		zap.Int("indicators", snap.Intelligence.Total()),
	)
	return &snap
}

// ClearBinding desasocia la identidad de su sesión activa sin borrar la
// sesión; el siguiente mensaje de esa identidad arranca una sesión nueva.
func (st *Store) ClearBinding(callerIdentity string) {
	st.mu.Lock()
	delete(st.bindings, callerIdentity)
	st.mu.Unlock()
}

// SweepExpired barre las sesiones expiradas y corre el finalizer sobre las
// que tienen al menos un mensaje. Devuelve cuántas se removieron.
func (st *Store) SweepExpired() int {
	st.mu.Lock()
	expired := st.sweepLocked()
	st.mu.Unlock()

	st.finalizeAll(expired)
	return len(expired)
}

// ActiveCount devuelve la cantidad de sesiones vivas después de un barrido.
func (st *Store) ActiveCount() int {
	st.mu.Lock()
	expired := st.sweepLocked()
	count := len(st.sessions)
	st.mu.Unlock()

	st.finalizeAll(expired)
	return count
}

// createLocked genera una sesión nueva bajo el lock del store.
func (st *Store) createLocked() *Session {
	s := NewSession(uuid.NewString())
	st.sessions[s.ID()] = s
	return s
}

// sweepLocked remueve las sesiones expiradas y sus bindings, y devuelve los
// snapshots de las que merecen pasada final. Debe llamarse con el lock tomado.
func (st *Store) sweepLocked() []domain.SessionSnapshot {
	var out []domain.SessionSnapshot
	for id, s := range st.sessions {
		if !s.IsExpired(st.timeout) {
			continue
		}
		delete(st.sessions, id)
		st.unbindLocked(id)
		snap := s.Snapshot()
		st.logger.Info("session expired",
			zap.String("session_id", id),
			zap.Int("messages", len(snap.Messages)),
		)
		if len(snap.Messages) > 0 {
			out = append(out, snap)
		}
	}
	return out
}

// unbindLocked limpia todo binding que apunte al id dado.
func (st *Store) unbindLocked(id string) {
	for identity, bound := range st.bindings {
		if bound == id {
			delete(st.bindings, identity)
		}
	}
}

func (st *Store) finalizeAll(snaps []domain.SessionSnapshot) {
	for _, snap := range snaps {
		st.runFinalizer(snap)
	}
}

// runFinalizer aísla la pasada final: un panic del finalizer se loguea y se
// traga, porque una sesión nunca removida sería peor que una extracción
// final perdida.
func (st *Store) runFinalizer(snap domain.SessionSnapshot) {
	if st.finalize == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			st.logger.Error("final extraction failed",
				zap.String("session_id", snap.ID),
				zap.Any("panic", r),
			)
		}
	}()
	st.finalize(snap)
}

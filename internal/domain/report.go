package domain

import "time"

// Detection es el veredicto del clasificador de estafas.
type Detection struct {
	IsScam     bool    `json:"is_scam"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// SessionSnapshot es una proyección de solo lectura de una sesión,
// tomada al terminar la sesión o para reporting externo.
type SessionSnapshot struct {
	ID             string                `json:"id"`
	Messages       []ConversationMessage `json:"messages"`
	Intelligence   Indicators            `json:"intelligence"`
	CreatedAt      time.Time             `json:"created_at"`
	LastActivityAt time.Time             `json:"last_activity_at"`
}

// FinalReport es el resultado final de una sesión terminada: lo que se
// archiva y se envía por callback al evaluador externo.
type FinalReport struct {
	SessionID     string     `json:"session_id"`
	ScamDetected  bool       `json:"scam_detected"`
	TotalMessages int        `json:"total_messages"`
	Intelligence  Indicators `json:"intelligence"`
	AgentNotes    string     `json:"agent_notes"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       time.Time  `json:"ended_at"`
}

package domain

import "time"

// Roles de los participantes en una conversación honeypot.
const (
	RoleCounterparty = "counterparty" // el presunto estafador
	RoleAgent        = "agent"        // la persona ficticia del honeypot
)

// ConversationMessage es un mensaje inmutable dentro del log de una sesión.
type ConversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

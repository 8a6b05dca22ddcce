package session

import "strings"

// Vocabulario fijo de terminación. Incluye palabras genéricas ("done",
// "stop", "reset") que también pueden aparecer en conversación legítima.
var exitPhrases = []string{
	"exit",
	"bye",
	"goodbye",
	"stop",
	"quit",
	"end",
	"done",
	"reset",
	"start over",
}

// IsExitMessage detecta si el texto es un comando de terminación del
// interlocutor. El match es por token completo: "please bye now" termina la
// sesión, pero "goodbyee" o "bye" incrustado dentro de otra palabra no.
func IsExitMessage(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}

	cleaned := " " + tokenize(normalized) + " "
	for _, phrase := range exitPhrases {
		if strings.Contains(cleaned, " "+phrase+" ") {
			return true
		}
	}
	return false
}

// tokenize reemplaza todo lo que no sea letra o dígito por espacios, de modo
// que la búsqueda por frase respete límites de palabra.
func tokenize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

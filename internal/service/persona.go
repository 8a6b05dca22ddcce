package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"honeypot-api/internal/llm"
)

const personaInstructions = `You are a honeypot persona agent. Your role is to generate human-like responses to scam messages.

Persona characteristics:
- Confused and uncertain about the situation
- Cooperative and eager to help/comply
- Uses casual language with occasional emojis
- Asks clarifying questions to encourage scammer engagement
- Never sounds robotic, technical, or security-aware
- Shows concern but not suspicion

Your responses should naturally encourage scammers to reveal more details while maintaining believability.`

// Respuesta de emergencia cuando el LLM falla; mantiene al estafador
// enganchado sin romper el personaje.
const fallbackReply = "Oh no, that sounds serious 😟 can you explain again what I need to do?"

// PersonaGenerator produce respuestas humanas de la persona honeypot,
// conscientes del contexto conversacional reciente.
type PersonaGenerator struct {
	logger *zap.Logger
	llm    llm.Client
}

// NewPersonaGenerator crea un generador de respuestas honeypot.
func NewPersonaGenerator(logger *zap.Logger, client llm.Client) *PersonaGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonaGenerator{logger: logger, llm: client}
}

// GenerateReply genera una respuesta de 1-2 oraciones al mensaje del
// estafador. Un fallo del LLM devuelve la respuesta de emergencia; el
// caller nunca ve un error.
func (g *PersonaGenerator) GenerateReply(ctx context.Context, message, conversationContext string) string {
	contextSection := ""
	if conversationContext != "" {
		contextSection = `
Previous conversation:
` + conversationContext + `

Remember this context when generating your reply - be consistent with what you've said before.
`
	}

	prompt := personaInstructions + contextSection + `

Generate a honeypot reply to this scam message.

Scam message: "` + message + `"

Requirements:
- Keep it to 1-2 sentences ONLY
- Sound confused and concerned
- Be cooperative and willing to help
- Use casual language and maybe an emoji or two
- Encourage the scammer to share more details
- If this is part of an ongoing conversation, maintain consistency with previous messages

Generate ONLY the response, nothing else. No explanation, no quotes, just the reply.`

	reply, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("persona reply generation failed, using fallback", zap.Error(err))
		return fallbackReply
	}

	return trimToTwoSentences(strings.TrimSpace(reply))
}

// trimToTwoSentences recorta la respuesta a dos oraciones como máximo.
func trimToTwoSentences(reply string) string {
	sentences := strings.Split(reply, ".")
	if len(sentences) <= 2 {
		return reply
	}
	trimmed := strings.TrimSpace(strings.Join(sentences[:2], "."))
	if !strings.HasSuffix(trimmed, ".") {
		trimmed += "."
	}
	return trimmed
}

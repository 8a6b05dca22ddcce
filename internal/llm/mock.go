package llm

import "context"

// MockClient permite tests sin llamar a un LLM real. Guarda el último
// prompt recibido para aserciones.
type MockClient struct {
	Response   string
	Err        error
	LastPrompt string
	Calls      int
}

func (m *MockClient) Generate(_ context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	m.Calls++
	return m.Response, m.Err
}

var _ Client = (*MockClient)(nil)

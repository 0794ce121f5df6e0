package llm

import "context"

// MockClient permite tests sin llamar a un proveedor real.
type MockClient struct {
	Response   string
	Err        error
	Embedding  []float32
	EmbedErr   error
	Calls      int
	EmbedCalls int
	// CompleteFn permite controlar la respuesta por llamada cuando esta seteado.
	CompleteFn func(ctx context.Context, model string, messages []Message) (string, error)
}

func (m *MockClient) Complete(ctx context.Context, model string, messages []Message, temperature float64, maxTokens int) (string, error) {
	m.Calls++
	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, model, messages)
	}
	return m.Response, m.Err
}

func (m *MockClient) Embed(ctx context.Context, model, input string) ([]float32, error) {
	m.EmbedCalls++
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	if m.Embedding != nil {
		return m.Embedding, nil
	}
	return []float32{0, 0, 0}, nil
}

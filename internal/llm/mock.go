package llm

import "context"

// MockClient is a test double for the completion Client interface.
// If Responses is non-empty, calls consume it in order; otherwise every call
// returns Response.
type MockClient struct {
	Response  *Response
	Responses []*Response
	Err       error
	Calls     []Request // records requests sent
}

// Complete records the call and returns the next mock response.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		m.Responses = m.Responses[1:]
		return resp, nil
	}
	return m.Response, nil
}

package handlers

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// ChatRequest is the body of POST /memory/chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the response of POST /memory/chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// StatusResponse is the response of GET /.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is the response of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Model    string `json:"model"`
	ModelErr string `json:"model_error,omitempty"`
	Circuit  string `json:"circuit,omitempty"`
	Memories int    `json:"memories"`
	StoreErr string `json:"store_error,omitempty"`
}

// AvailableModelsResponse is the response of GET /llm/models.
type AvailableModelsResponse struct {
	Model  string   `json:"model"`
	Models []string `json:"models"`
	Error  string   `json:"error,omitempty"`
}

// Event is a message pushed to WebSocket clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// MemorySavedEvent is the payload of a memory_saved event.
type MemorySavedEvent struct {
	ID        string `json:"id"`
	Sentiment string `json:"sentiment"`
	Summary   string `json:"summary"`
	Intent    string `json:"intent"`
	CreatedAt string `json:"created_at"`
}

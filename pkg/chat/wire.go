package chat

// Role values used in history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one history entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body of POST /chat when sent as JSON. Form posts carry the
// same two fields.
type Request struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

// Response is the body returned by POST /chat.
type Response struct {
	Response     string  `json:"response"`
	ImageBase64  *string `json:"image_base64"`
	ImageMIME    string  `json:"image_mime,omitempty"`
	ResponseHTML string  `json:"response_html,omitempty"`
	Mode         Mode    `json:"mode"`
}

// Health is the body returned by GET /health.
type Health struct {
	Status         string `json:"status"`
	Name           string `json:"name"`
	ActiveSessions int    `json:"active_sessions"`
	Runtime        string `json:"runtime"`
}

const (
	EmptyMessageReply = "Mensagem vazia. Digite algo para continuar."
	RateLimitedReply  = "Muitas mensagens em sequência. Aguarde um instante e tente de novo."
	GreetingReply     = "Olá! Eu sou o QuantumX. Como posso ajudar hoje?"
)

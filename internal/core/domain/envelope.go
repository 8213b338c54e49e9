package domain

// Envelope is the uniform JSON wrapper returned by every Barruu API call.
// On failure the server sets Success=false and one of Error/Message.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Reason returns the server's failure explanation, preferring Error over
// Message, falling back to a generic string so callers always get something.
func (e *Envelope[T]) Reason() string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	return "request rejected"
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is the paginated variant of the envelope. List endpoints return the
// items for one window; the client never filters or pages further.
type Page[T any] struct {
	Success    bool       `json:"success"`
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Error      string     `json:"error,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// AuthEnvelope is the register/login/me response shape. Unlike the generic
// envelope, token and user sit at the top level.
type AuthEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Reason returns the server's failure explanation for an auth response.
func (e *AuthEnvelope) Reason() string {
	if e.Error != "" {
		return e.Error
	}
	if e.Message != "" {
		return e.Message
	}
	return "request rejected"
}

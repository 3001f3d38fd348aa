package transport

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateDocumentRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Summary string `json:"summary"`
}

type UpdateDocumentRequest struct {
	Title   *string `json:"title"`
	Author  *string `json:"author"`
	Summary *string `json:"summary"`
}

type Response struct {
	Message string `json:"message"`
}

type LoginPayload struct {
	ID      string `json:"_id"`
	Email   string `json:"email"`
	Expires int64  `json:"expires"`
}

type LoginResponse struct {
	User LoginPayload `json:"user"`
}

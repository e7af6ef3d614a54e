package transport

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AssignRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ItemID    string `json:"item_id"    validate:"required"`
}

type ResponseRequest struct {
	ItemID  string `json:"item_id" validate:"required"`
	Answer  string `json:"answer"`
	Correct bool   `json:"correct"`
}

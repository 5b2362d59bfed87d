package handlers

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type codeRequest struct {
	Email      string `json:"email" validate:"required,email"`
	VerifyCode string `json:"verify_code" validate:"required,numeric,len=5"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type approveOrderRequest struct {
	OrderID    string `json:"orders_id" validate:"required"`
	CustomerID string `json:"users_id" validate:"required"`
	CourierID  string `json:"delivery_id" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	Account any    `json:"account"`
}

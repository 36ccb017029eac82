package models

// ContactMessage — сообщение из формы обратной связи. Публикуется в очередь
// и доставляется почтовым воркером.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

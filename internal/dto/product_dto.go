package dto

type CreateProductRequest struct {
	Name  string  `json:"name"  validate:"required,min=2,max=100"`
	Slug  string  `json:"slug"  validate:"required,min=2,max=60,lowercase"`
	Notes *string `json:"notes"`
}

type ProductResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	Token     string  `json:"token"`
	Network   string  `json:"network"`
	Notes     *string `json:"notes"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at"`
}

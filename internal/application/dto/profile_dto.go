package dto

import "time"

// ProfileResponse salida de un perfil de tenant/operador.
type ProfileResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	IsAdmin     bool      `json:"is_admin"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpdateProfileStatusRequest entrada del operador para aprobar o suspender una cuenta.
type UpdateProfileStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// UpdateProfileRequest entrada del operador para corregir datos del perfil.
type UpdateProfileRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
}

// ProfileListResponse listado de perfiles ordenado por fecha de creación.
type ProfileListResponse struct {
	Items []ProfileResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

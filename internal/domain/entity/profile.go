package entity

import "time"

// Estados válidos para Profile. El registro nunca se borra: las cuentas se
// gestionan vía status (soft-managed).
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Profile representa el registro autoritativo de un tenant u operador.
// Invariante: como máximo un Profile por identificador de usuario (ID == User.ID
// del proveedor de identidad). Lo crea un trigger de aprovisionamiento externo
// cuando el usuario se registra, por lo que puede no existir aún en la primera lectura.
type Profile struct {
	ID          string
	CompanyName string
	IsAdmin     bool
	Status      string // pending, active, suspended
	CreatedAt   time.Time
}

// ValidStatus indica si s es uno de los estados reconocidos.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusActive || s == StatusSuspended
}

// CanTransition valida el cambio de estado que puede aplicar un operador:
// pending → active, y active ↔ suspended.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusActive
	case StatusActive:
		return to == StatusSuspended
	case StatusSuspended:
		return to == StatusActive
	}
	return false
}

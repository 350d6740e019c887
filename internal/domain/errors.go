package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Forman el conjunto cerrado de resultados de las operaciones del ledger.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidIdentifier  = errors.New("identificador inválido")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStorageFailure     = errors.New("fallo de almacenamiento")
	ErrLockTimeout        = errors.New("no se pudo adquirir el lock del producto")
)

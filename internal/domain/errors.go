package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrNumberCollision   = errors.New("número de documento duplicado")
	ErrTransient         = errors.New("fallo transitorio, reintente")
	ErrSignatureInvalid  = errors.New("firma de enlace inválida")
	ErrLinkExpired       = errors.New("enlace expirado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)

package domain

import "errors"

var (
	// ErrValidation indica que un registro de proveedor no pasó la normalización.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indica que la clave o registro no existe.
	ErrNotFound = errors.New("not found")

	// ErrNoOpportunity indica que no quedó ningún candidato no-SKIP.
	// No es un fallo: significa "nada que hacer hoy".
	ErrNoOpportunity = errors.New("no opportunity")
)

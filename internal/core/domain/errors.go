package domain

import "errors"

// ErrNotAuthenticated indica que no hay un usuario autenticado en la sesión.
var ErrNotAuthenticated = errors.New("not authenticated")

package service

import "errors"

// Sentinel errors mapped to wire codes by the handlers. The auth errors are
// deliberately coarse: login and refresh failures never reveal which check
// failed (unknown user, wrong password, revoked nonce, disabled account)
// to avoid account-enumeration side channels.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)

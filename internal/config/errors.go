package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrLoadSettings    = errors.New("load settings failed")
	ErrLoadRules       = errors.New("load rules failed")
	ErrInvalidRule     = errors.New("invalid rule")
)

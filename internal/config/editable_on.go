//go:build editable

package config

// Editable reports whether this binary exposes the write surface
const Editable = true

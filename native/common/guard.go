package common

import "errors"

// ErrModulePaused is returned when an administrative pause blocks a mutating
// request against the named module.
var ErrModulePaused = errors.New("module paused")

// PauseView reports the administrative pause state for native modules.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects mutating requests while the module is paused. A nil view or
// empty module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

package host

// Option configures a Host during construction.
type Option func(*Host)

// WithClipboard injects an external clipboard implementation (e.g. an OS
// clipboard), replacing the default in-process register.
func WithClipboard(c Clipboard) Option {
	return func(h *Host) { h.clipboard = c }
}

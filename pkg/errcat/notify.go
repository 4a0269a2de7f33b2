package errcat

// Notifier forwards a formatted message to an external sink (the OS event
// log writer lives outside this layer and consumes the string only).
// Source is a hint for the sink's registration name; sinks without a
// registered source fall back to a generic one.
type Notifier interface {
	Notify(source, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(source, message string)

func (f NotifierFunc) Notify(source, message string) {
	f(source, message)
}

// Notify formats code+extra and hands the result to the notifier. A nil
// notifier is a no-op so call sites need no guard.
func Notify(n Notifier, source, code, extra string) {
	if n == nil {
		return
	}
	n.Notify(source, Format(code, extra))
}

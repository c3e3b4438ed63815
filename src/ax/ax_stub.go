//go:build !darwin

package ax

// System returns a backend that reports every query as unavailable. The
// retrieval chain then degrades to the clipboard-copy fallback.
func System() Introspector {
	return unavailableIntrospector{}
}

type unavailableIntrospector struct{}

func (unavailableIntrospector) FocusedElement(pid int) (Element, error) {
	return nil, ErrUnavailable
}

func (unavailableIntrospector) FrontWindow() (Window, error) {
	return Window{}, ErrUnavailable
}

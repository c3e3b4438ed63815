//go:build !darwin

package activate

// System returns an activator that fails every call; paste-back then runs
// best-effort against whatever is frontmost.
func System() Activator {
	return stubActivator{}
}

type stubActivator struct{}

func (stubActivator) Activate(pid int) error        { return ErrUnsupported }
func (stubActivator) ForceFront(pid int) error      { return ErrUnsupported }
func (stubActivator) FocusMainWindow(pid int) error { return ErrUnsupported }

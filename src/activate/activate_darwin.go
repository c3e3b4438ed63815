//go:build darwin

package activate

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework ApplicationServices

#include <AppKit/AppKit.h>
#include <ApplicationServices/ApplicationServices.h>

static int activatePID(pid_t pid) {
	@autoreleasepool {
		NSRunningApplication* app =
			[NSRunningApplication runningApplicationWithProcessIdentifier:pid];
		if (!app) return -1;
		BOOL ok = [app activateWithOptions:NSApplicationActivateIgnoringOtherApps];
		return ok ? 0 : -1;
	}
}

// Raise the main (or focused) window of the process via the AXRaise action.
static int raiseMainWindow(pid_t pid) {
	AXUIElementRef app = AXUIElementCreateApplication(pid);
	if (!app) return -1;

	AXUIElementRef win = NULL;
	AXError err = AXUIElementCopyAttributeValue(app, kAXMainWindowAttribute, (CFTypeRef*)&win);
	if (err != kAXErrorSuccess || !win) {
		win = NULL;
		err = AXUIElementCopyAttributeValue(app, kAXFocusedWindowAttribute, (CFTypeRef*)&win);
	}
	int rc = -1;
	if (err == kAXErrorSuccess && win) {
		if (AXUIElementPerformAction(win, kAXRaiseAction) == kAXErrorSuccess) rc = 0;
		CFRelease(win);
	}
	CFRelease(app);
	return rc;
}
*/
import "C"

import (
	"fmt"
	"os/exec"
)

// System returns the macOS activator.
func System() Activator {
	return darwinActivator{}
}

type darwinActivator struct{}

func (darwinActivator) Activate(pid int) error {
	if C.activatePID(C.pid_t(pid)) != 0 {
		return fmt.Errorf("activate: activation refused for pid %d", pid)
	}
	return nil
}

func (darwinActivator) ForceFront(pid int) error {
	script := fmt.Sprintf(
		`tell application "System Events" to set frontmost of (first process whose unix id is %d) to true`, pid)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("activate: osascript frontmost failed for pid %d: %v (%s)", pid, err, out)
	}
	return nil
}

func (darwinActivator) FocusMainWindow(pid int) error {
	if C.raiseMainWindow(C.pid_t(pid)) != 0 {
		return fmt.Errorf("activate: could not raise main window of pid %d", pid)
	}
	return nil
}

//go:build darwin

package keysynth

/*
#cgo LDFLAGS: -framework ApplicationServices

#include <ApplicationServices/ApplicationServices.h>

// Post Cmd+<key> down/up through the HID event tap.
static int sendCommandShortcut(CGKeyCode key) {
	CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
	if (!source) return -1;

	CGEventRef keyDown = CGEventCreateKeyboardEvent(source, key, true);
	CGEventRef keyUp = CGEventCreateKeyboardEvent(source, key, false);
	if (!keyDown || !keyUp) {
		if (keyDown) CFRelease(keyDown);
		if (keyUp) CFRelease(keyUp);
		CFRelease(source);
		return -1;
	}
	CGEventSetFlags(keyDown, kCGEventFlagMaskCommand);
	CGEventSetFlags(keyUp, kCGEventFlagMaskCommand);

	CGEventPost(kCGHIDEventTap, keyDown);
	CGEventPost(kCGHIDEventTap, keyUp);

	CFRelease(keyDown);
	CFRelease(keyUp);
	CFRelease(source);
	return 0;
}
*/
import "C"

import "fmt"

const (
	vkANSIC = 8
	vkANSIV = 9
)

// System returns the CGEvent-backed synthesizer.
func System() Synthesizer {
	return darwinSynthesizer{}
}

type darwinSynthesizer struct{}

func (darwinSynthesizer) Copy() error {
	if C.sendCommandShortcut(C.CGKeyCode(vkANSIC)) != 0 {
		return fmt.Errorf("keysynth: failed to post copy keystroke")
	}
	return nil
}

func (darwinSynthesizer) Paste() error {
	if C.sendCommandShortcut(C.CGKeyCode(vkANSIV)) != 0 {
		return fmt.Errorf("keysynth: failed to post paste keystroke")
	}
	return nil
}

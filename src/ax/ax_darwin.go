//go:build darwin

package ax

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework AppKit -framework Foundation

#include <ApplicationServices/ApplicationServices.h>
#include <AppKit/AppKit.h>
#include <stdlib.h>
#include <string.h>

// Copy a string attribute from an element. Returns NULL on any failure;
// caller frees.
static char* axCopyStringAttr(AXUIElementRef el, CFStringRef attr) {
	if (!el) return NULL;
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(el, attr, &value);
	if (err != kAXErrorSuccess || !value) return NULL;
	char* out = NULL;
	if (CFGetTypeID(value) == CFStringGetTypeID()) {
		CFStringRef str = (CFStringRef)value;
		CFIndex length = CFStringGetLength(str);
		CFIndex maxSize = CFStringGetMaximumSizeForEncoding(length, kCFStringEncodingUTF8) + 1;
		out = (char*)malloc(maxSize);
		if (out && !CFStringGetCString(str, out, maxSize, kCFStringEncodingUTF8)) {
			free(out);
			out = NULL;
		}
	}
	CFRelease(value);
	return out;
}

// Focused element of a process; falls back to the focused window, then the
// main window, when no element reports focus.
static AXUIElementRef axFocusedElement(pid_t pid) {
	AXUIElementRef app = AXUIElementCreateApplication(pid);
	if (!app) return NULL;

	AXUIElementRef el = NULL;
	AXError err = AXUIElementCopyAttributeValue(app, kAXFocusedUIElementAttribute, (CFTypeRef*)&el);
	if (err != kAXErrorSuccess || !el) {
		el = NULL;
		err = AXUIElementCopyAttributeValue(app, kAXFocusedWindowAttribute, (CFTypeRef*)&el);
	}
	if (err != kAXErrorSuccess || !el) {
		el = NULL;
		AXUIElementCopyAttributeValue(app, kAXMainWindowAttribute, (CFTypeRef*)&el);
	}
	CFRelease(app);
	return el;
}

// Selected range of an element. Returns 0 on success.
static int axSelectedRange(AXUIElementRef el, long* start, long* length) {
	if (!el) return -1;
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(el, kAXSelectedTextRangeAttribute, &value);
	if (err != kAXErrorSuccess || !value) return -1;
	int rc = -1;
	if (CFGetTypeID(value) == AXValueGetTypeID()) {
		CFRange range;
		if (AXValueGetValue((AXValueRef)value, kAXValueTypeCFRange, &range)) {
			*start = range.location;
			*length = range.length;
			rc = 0;
		}
	}
	CFRelease(value);
	return rc;
}

// Resolve an explicit range to a string via the parameterized attribute.
static char* axStringForRange(AXUIElementRef el, long start, long length) {
	if (!el) return NULL;
	CFRange range = CFRangeMake(start, length);
	AXValueRef param = AXValueCreate(kAXValueTypeCFRange, &range);
	if (!param) return NULL;
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyParameterizedAttributeValue(
		el, kAXStringForRangeParameterizedAttribute, param, &value);
	CFRelease(param);
	if (err != kAXErrorSuccess || !value) return NULL;
	char* out = NULL;
	if (CFGetTypeID(value) == CFStringGetTypeID()) {
		CFStringRef str = (CFStringRef)value;
		CFIndex len = CFStringGetLength(str);
		CFIndex maxSize = CFStringGetMaximumSizeForEncoding(len, kCFStringEncodingUTF8) + 1;
		out = (char*)malloc(maxSize);
		if (out && !CFStringGetCString(str, out, maxSize, kCFStringEncodingUTF8)) {
			free(out);
			out = NULL;
		}
	}
	CFRelease(value);
	return out;
}

// Explicit editable capability: 1 editable, 0 not editable, -1 unknown.
static int axEditableAttr(AXUIElementRef el) {
	if (!el) return -1;
	CFTypeRef value = NULL;
	AXError err = AXUIElementCopyAttributeValue(el, CFSTR("AXEditable"), &value);
	if (err != kAXErrorSuccess || !value) return -1;
	int rc = -1;
	if (CFGetTypeID(value) == CFBooleanGetTypeID()) {
		rc = CFBooleanGetValue((CFBooleanRef)value) ? 1 : 0;
	}
	CFRelease(value);
	return rc;
}

static int axValueSettable(AXUIElementRef el) {
	if (!el) return 0;
	Boolean settable = false;
	if (AXUIElementIsAttributeSettable(el, kAXValueAttribute, &settable) != kAXErrorSuccess) {
		return 0;
	}
	return settable ? 1 : 0;
}

// Frontmost application identity. Returns 0 on success; caller frees name
// and title.
static int axFrontWindow(pid_t* pid, char** name, char** title) {
	@autoreleasepool {
		NSRunningApplication* frontApp = [[NSWorkspace sharedWorkspace] frontmostApplication];
		if (!frontApp) return -1;
		*pid = frontApp.processIdentifier;
		const char* appName = frontApp.localizedName ? [frontApp.localizedName UTF8String] : "";
		*name = strdup(appName);

		*title = NULL;
		AXUIElementRef app = AXUIElementCreateApplication(*pid);
		if (app) {
			AXUIElementRef win = NULL;
			AXError err = AXUIElementCopyAttributeValue(app, kAXFocusedWindowAttribute, (CFTypeRef*)&win);
			if (err != kAXErrorSuccess || !win) {
				win = NULL;
				AXUIElementCopyAttributeValue(app, kAXMainWindowAttribute, (CFTypeRef*)&win);
			}
			if (win) {
				*title = axCopyStringAttr(win, kAXTitleAttribute);
				CFRelease(win);
			}
			CFRelease(app);
		}
		if (!*title) *title = strdup("");
		return 0;
	}
}

static void axRelease(AXUIElementRef el) {
	if (el) CFRelease(el);
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// System returns the macOS accessibility backend.
func System() Introspector {
	return darwinIntrospector{}
}

type darwinIntrospector struct{}

func (darwinIntrospector) FocusedElement(pid int) (Element, error) {
	ref := C.axFocusedElement(C.pid_t(pid))
	if ref == nil {
		return nil, ErrUnavailable
	}
	el := &darwinElement{ref: ref}
	runtime.SetFinalizer(el, func(e *darwinElement) { C.axRelease(e.ref) })
	return el, nil
}

func (darwinIntrospector) FrontWindow() (Window, error) {
	var pid C.pid_t
	var name, title *C.char
	if C.axFrontWindow(&pid, &name, &title) != 0 {
		return Window{}, ErrUnavailable
	}
	defer C.free(unsafe.Pointer(name))
	defer C.free(unsafe.Pointer(title))
	return Window{
		PID:     int(pid),
		AppName: C.GoString(name),
		Title:   C.GoString(title),
	}, nil
}

type darwinElement struct {
	ref C.AXUIElementRef
}

func (e *darwinElement) SelectedText() (string, error) {
	return e.copyString(C.kAXSelectedTextAttribute)
}

func (e *darwinElement) Value() (string, error) {
	return e.copyString(C.kAXValueAttribute)
}

func (e *darwinElement) Role() (string, error) {
	return e.copyString(C.kAXRoleAttribute)
}

func (e *darwinElement) copyString(attr C.CFStringRef) (string, error) {
	cstr := C.axCopyStringAttr(e.ref, attr)
	if cstr == nil {
		return "", ErrUnavailable
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

func (e *darwinElement) SelectedRange() (int, int, error) {
	var start, length C.long
	if C.axSelectedRange(e.ref, &start, &length) != 0 {
		return 0, 0, ErrUnavailable
	}
	return int(start), int(length), nil
}

func (e *darwinElement) StringForRange(start, length int) (string, error) {
	cstr := C.axStringForRange(e.ref, C.long(start), C.long(length))
	if cstr == nil {
		return "", ErrUnavailable
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), nil
}

func (e *darwinElement) EditableAttribute() (bool, bool) {
	switch C.axEditableAttr(e.ref) {
	case 1:
		return true, true
	case 0:
		return false, true
	default:
		return false, false
	}
}

func (e *darwinElement) ValueSettable() bool {
	return C.axValueSettable(e.ref) == 1
}

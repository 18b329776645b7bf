// Package device classifies the visitor's viewport so the layout can pick
// between bottom navigation (mobile) and top navigation (desktop).
package device

import (
	"net/http"
	"strconv"
	"strings"
)

type Class string

const (
	Mobile  Class = "mobile"
	Desktop Class = "desktop"
)

// MobileBreakpoint is the first viewport width, in CSS pixels, treated as
// desktop.
const MobileBreakpoint = 768

// WidthCookie is set by the page script with window.innerWidth.
const WidthCookie = "vw"

// ClassOf maps a viewport width to a device class. Unknown widths (<= 0)
// are desktop.
func ClassOf(width int) Class {
	if width > 0 && width < MobileBreakpoint {
		return Mobile
	}
	return Desktop
}

// ShowBottomNav reports whether the bottom navigation bar is rendered.
func ShowBottomNav(c Class) bool {
	return c == Mobile
}

// ViewportWidth reads the viewport width the browser reported, from client
// hints first and the page cookie second. Zero when unknown.
func ViewportWidth(r *http.Request) int {
	for _, header := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		if w := parseWidth(r.Header.Get(header)); w > 0 {
			return w
		}
	}
	if cookie, err := r.Cookie(WidthCookie); err == nil {
		return parseWidth(cookie.Value)
	}
	return 0
}

// FromRequest classifies the request's viewport. Without a reported width
// it falls back to the User-Agent mobile token.
func FromRequest(r *http.Request) Class {
	if w := ViewportWidth(r); w > 0 {
		return ClassOf(w)
	}
	if strings.Contains(r.UserAgent(), "Mobi") {
		return Mobile
	}
	return Desktop
}

func parseWidth(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	w, err := strconv.Atoi(raw)
	if err != nil || w < 0 {
		return 0
	}
	return w
}

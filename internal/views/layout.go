package views

import (
	"strings"

	"Mansoor88-6/timesheet-portal/internal/device"
	"Mansoor88-6/timesheet-portal/internal/models"
)

type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

// Toast is a one-shot notification shown by the layout's toast host.
type Toast struct {
	Kind    string
	Message string
}

// Layout is the chrome shared by every page: navigation, overlays and the
// viewer's session flags.
type Layout struct {
	Title               string
	Lang                string
	CurrentPath         string
	User                *models.User
	Nav                 []NavItem
	Device              device.Class
	ShowBottomNav       bool
	Toasts              []Toast
	ForcePasswordChange bool
	RefreshAfter        int // seconds; set while a widget is still loading
	CSRFToken           string
}

// CSRFFieldName is the form field carrying the CSRF token.
const CSRFFieldName = "csrf_token"

// Page is what a page template is executed with.
type Page struct {
	Layout
	Content any
}

var navigation = []NavItem{
	{Label: "Dashboard", Href: "/"},
	{Label: "Timesheet", Href: "/timesheet"},
	{Label: "Note spese", Href: "/expenses"},
	{Label: "Trasferte", Href: "/trips"},
	{Label: "Ferie e permessi", Href: "/timeoff"},
	{Label: "Malattia", Href: "/sickleave"},
	{Label: "Report", Href: "/reports"},
	{Label: "Impostazioni", Href: "/settings"},
}

var adminNav = NavItem{Label: "Amministrazione", Href: "/admin"}

// Navigation returns the menu for user with the entry matching current
// marked active. Anonymous visitors get no menu.
func Navigation(current string, user *models.User) []NavItem {
	if user == nil {
		return nil
	}
	items := make([]NavItem, 0, len(navigation)+1)
	items = append(items, navigation...)
	if user.Role == models.RoleAdmin {
		items = append(items, adminNav)
	}
	for i := range items {
		items[i].Active = isActive(current, items[i].Href)
	}
	return items
}

func isActive(current, href string) bool {
	if href == "/" {
		return current == "/"
	}
	return current == href || strings.HasPrefix(current, href+"/")
}

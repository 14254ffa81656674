package httpx

// Page identifiers used by handlers and the layout's renderSection call.
const (
	PageUsers         = "users"
	PageConfirmDelete = "confirm-delete"
)

// Console routes referenced by handlers and redirects.
const (
	PathHome    = "/"
	PathConsole = "/users/console"
)

// EventUsersChanged is the htmx event fired after every console response.
const EventUsersChanged = "users:changed"

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Fragment names rendered for htmx requests.
const (
	fragmentConsole = "console"
	fragmentToast   = "toast"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageUsers:         "users-content",
	PageConfirmDelete: "confirm-delete-content",
}

// ContentTemplateFor returns the content template for the given page.
// Unknown pages fall back to the users console.
func ContentTemplateFor(page string) string {
	if name, ok := contentTemplates[page]; ok {
		return name
	}
	return "users-content"
}

package tracking

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ekosolar/lead-pipeline/internal/pkg/httputil"
	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
)

// transparentGIF is a 1x1 transparent GIF, served on every open
// callback so broken or stale tracking IDs never render a broken image
// in the recipient's mail client.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Handler serves the engagement callback endpoints.
type Handler struct {
	registry        *Registry
	defaultRedirect string
}

// NewHandler creates a handler. defaultRedirect is where click
// callbacks land when no explicit destination is given.
func NewHandler(registry *Registry, defaultRedirect string) *Handler {
	if defaultRedirect == "" {
		defaultRedirect = "https://ekosolar.com"
	}
	return &Handler{registry: registry, defaultRedirect: defaultRedirect}
}

// Routes builds the callback router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/track/open/{id}", h.handleOpen)
	r.Get("/track/click/{id}", h.handleClick)
	r.Get("/health", h.handleHealth)
	return r
}

// handleOpen records the open and serves the pixel. The pixel is
// served no matter what: a failed lookup must not surface to the mail
// client.
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "id")

	if _, err := h.registry.RecordOpen(r.Context(), trackingID, r.UserAgent(), clientIP(r)); err != nil {
		logger.Warn("open event not recorded", "tracking_id", trackingID, "error", err.Error())
	}

	servePixel(w)
}

// handleClick records the click and redirects. Like the pixel, the
// redirect always happens so the recipient reaches their destination
// even when the tracking ID is garbage.
func (h *Handler) handleClick(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "id")
	linkName := r.URL.Query().Get("link")

	if _, err := h.registry.RecordClick(r.Context(), trackingID, linkName, r.UserAgent(), clientIP(r)); err != nil {
		logger.Warn("click event not recorded", "tracking_id", trackingID, "error", err.Error())
	}

	http.Redirect(w, r, h.redirectTarget(r), http.StatusFound)
}

// redirectTarget resolves the click destination. Only the schemes a
// lead notification actually links to are allowed; anything else falls
// back to the default so the endpoint is not an open redirector.
func (h *Handler) redirectTarget(r *http.Request) string {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		return h.defaultRedirect
	}
	u, err := url.Parse(raw)
	if err != nil {
		return h.defaultRedirect
	}
	switch u.Scheme {
	case "http", "https", "tel", "mailto":
		return raw
	}
	return h.defaultRedirect
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(transparentGIF)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// PixelHTML renders the open-tracking image tag for the given tracking
// ID.
func PixelHTML(baseURL, trackingID string) string {
	return `<img src="` + strings.TrimRight(baseURL, "/") + `/track/open/` + trackingID +
		`" width="1" height="1" alt="" style="display:none;width:1px;height:1px" />`
}

// ClickURL builds a redirect URL that records a click before sending
// the visitor to dest.
func ClickURL(baseURL, trackingID, linkName, dest string) string {
	q := url.Values{}
	if linkName != "" {
		q.Set("link", linkName)
	}
	if dest != "" {
		q.Set("url", dest)
	}
	u := strings.TrimRight(baseURL, "/") + "/track/click/" + trackingID
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// InjectPixel inserts the open pixel into an HTML document, before
// </body> when one exists, appended otherwise.
func InjectPixel(html, baseURL, trackingID string) string {
	pixel := PixelHTML(baseURL, trackingID)
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return html[:idx] + pixel + html[idx:]
	}
	return html + pixel
}

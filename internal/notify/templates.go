package notify

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// Renderer renders notification bodies from Liquid templates. Parsed
// templates are cached; the engine carries the filters our templates
// use.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // source -> *liquid.Template
}

// NewRenderer creates a renderer with the notification filters
// registered.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()

	// {{ first_name | default: "there" }}
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" || s == "0" {
			return defaultVal
		}
		return value
	})

	// {{ electric_bill | currency }}
	engine.RegisterFilter("currency", func(v interface{}) string {
		switch n := v.(type) {
		case float64:
			return fmt.Sprintf("$%.0f", n)
		case int:
			return fmt.Sprintf("$%d", n)
		default:
			return fmt.Sprintf("$%v", v)
		}
	})

	// {{ user_input | escape }}
	engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	// {{ priority | band_color }}
	engine.RegisterFilter("band_color", func(priority string) string {
		switch strings.ToUpper(priority) {
		case "URGENT":
			return "#dc2626"
		case "HIGH":
			return "#ea580c"
		case "MEDIUM":
			return "#ca8a04"
		default:
			return "#2563eb"
		}
	})

	return &Renderer{engine: engine}
}

// Render parses (or reuses) the template source and renders it with
// the given bindings.
func (r *Renderer) Render(source string, bindings map[string]interface{}) (string, error) {
	var tmpl *liquid.Template
	if cached, ok := r.cache.Load(source); ok {
		tmpl = cached.(*liquid.Template)
	} else {
		parsed, err := r.engine.ParseString(source)
		if err != nil {
			return "", fmt.Errorf("parsing template: %w", err)
		}
		r.cache.Store(source, parsed)
		tmpl = parsed
	}

	out, err := tmpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return out, nil
}

// adminEmailTemplate is the internal lead alert: priority banner,
// contact details with clickable tel/mailto links, the score breakdown,
// insights, and any engagement history from earlier notifications.
const adminEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;max-width:640px;margin:0 auto;color:#111827;">
  <div style="background:{{ priority | band_color }};color:#ffffff;padding:16px 24px;border-radius:8px 8px 0 0;">
    <h1 style="margin:0;font-size:20px;">{{ priority }} — {{ category | escape }}</h1>
    <p style="margin:4px 0 0;">Score: {{ total_score }} points</p>
  </div>
  <div style="border:1px solid #e5e7eb;border-top:none;padding:24px;border-radius:0 0 8px 8px;">
    <h2 style="margin-top:0;">New Solar Lead</h2>
    <table style="width:100%;border-collapse:collapse;">
      <tr><td style="padding:6px 0;color:#6b7280;">Name</td><td>{{ name | escape }}</td></tr>
      <tr><td style="padding:6px 0;color:#6b7280;">Phone</td><td><a href="{{ phone_link }}">{{ phone | escape }}</a></td></tr>
      <tr><td style="padding:6px 0;color:#6b7280;">Email</td><td><a href="{{ email_link }}">{{ email | escape }}</a></td></tr>
      {% if address != "" %}<tr><td style="padding:6px 0;color:#6b7280;">Address</td><td>{{ address | escape }}</td></tr>{% endif %}
      {% if electric_bill > 0 %}<tr><td style="padding:6px 0;color:#6b7280;">Monthly Bill</td><td>{{ electric_bill | currency }}</td></tr>{% endif %}
    </table>
    {% if message != "" %}
    <h3>Message</h3>
    <p style="background:#f9fafb;padding:12px;border-radius:6px;">{{ message | escape }}</p>
    {% endif %}
    <h3>Score Breakdown</h3>
    <table style="width:100%;border-collapse:collapse;">
      <tr><td style="padding:4px 0;color:#6b7280;">Electric bill</td><td>{{ score_bill }}</td></tr>
      <tr><td style="padding:4px 0;color:#6b7280;">Location</td><td>{{ score_location }}</td></tr>
      <tr><td style="padding:4px 0;color:#6b7280;">Urgency</td><td>{{ score_urgency }}</td></tr>
      <tr><td style="padding:4px 0;color:#6b7280;">Home value</td><td>{{ score_home }}</td></tr>
      <tr><td style="padding:4px 0;color:#6b7280;">Timing</td><td>{{ score_timing }}</td></tr>
    </table>
    {% if insights.size > 0 %}
    <h3>Insights</h3>
    <ul>
      {% for insight in insights %}<li>{{ insight | escape }}</li>{% endfor %}
    </ul>
    {% endif %}
    {% if has_engagement %}
    <h3>Engagement</h3>
    <p>{{ engagement_summary | escape }} — {{ engagement_opens }} opens, {{ engagement_clicks }} clicks (score {{ engagement_score }})</p>
    {% endif %}
    <p style="color:#9ca3af;font-size:12px;margin-bottom:0;">Submitted {{ submitted_at }}</p>
  </div>
</body>
</html>`

// customerEmailTemplate is the confirmation sent to the lead. It never
// includes scoring or internal detail.
const customerEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;max-width:640px;margin:0 auto;color:#111827;">
  <div style="background:#16a34a;color:#ffffff;padding:16px 24px;border-radius:8px 8px 0 0;">
    <h1 style="margin:0;font-size:20px;">Thanks for reaching out, {{ first_name | default: "there" | escape }}!</h1>
  </div>
  <div style="border:1px solid #e5e7eb;border-top:none;padding:24px;border-radius:0 0 8px 8px;">
    <p>We received your solar inquiry and one of our energy consultants will contact you within one business day.</p>
    <p>In the meantime, feel free to call us at <a href="tel:{{ company_phone }}">{{ company_phone_display }}</a> with any questions.</p>
    <p style="margin-bottom:0;">— The {{ company_name | escape }} Team</p>
  </div>
</body>
</html>`

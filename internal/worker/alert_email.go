package worker

// alert_email.go
// Renders the fraud alert email. Table layout with inline styles for
// email client compatibility.

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/model"
)

func yesNoBadge(v bool) string {
	if v {
		return `<span style="background:#fee2e2;color:#dc2626;padding:4px 10px;border-radius:12px;font-size:12px;font-weight:600;">YES</span>`
	}
	return `<span style="background:#d1fae5;color:#059669;padding:4px 10px;border-radius:12px;font-size:12px;font-weight:600;">No</span>`
}

func htmlRow(label, value string) string {
	return fmt.Sprintf(
		`<tr><td style="padding:8px 12px;color:#6b7280;font-size:13px;">%s</td><td style="padding:8px 12px;font-size:13px;">%s</td></tr>`,
		label, value)
}

func escape(s *string) string {
	if s == nil {
		return "-"
	}
	return html.EscapeString(*s)
}

func buildFraudAlertHTML(order *model.Order, res *infra.IPQSResult, ps PatternScore, reason string) string {
	var b strings.Builder

	b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="max-width:640px;margin:0 auto;font-family:Arial,sans-serif;">`)
	b.WriteString(`<tr><td style="background:linear-gradient(135deg,#dc2626,#991b1b);color:#fff;padding:30px 20px;text-align:center;border-radius:12px 12px 0 0;">`)
	b.WriteString(fmt.Sprintf(`<h1 style="margin:0;font-size:22px;">Fraud Alert</h1><p style="margin:8px 0 0;font-size:14px;">%s</p>`, html.EscapeString(reason)))
	b.WriteString(`</td></tr>`)

	b.WriteString(`<tr><td style="background:#fff;border:1px solid #e5e7eb;border-top:0;padding:20px;">`)
	b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0">`)
	b.WriteString(htmlRow("Order", html.EscapeString(order.OrderID)))
	b.WriteString(htmlRow("Product", escape(order.ProductName)))
	b.WriteString(htmlRow("Amount", order.ProductPrice.StringFixed(2)+" "+html.EscapeString(order.Currency)))
	b.WriteString(htmlRow("Customer", escape(order.CustomerName)))
	b.WriteString(htmlRow("Email", escape(order.CustomerEmail)))
	b.WriteString(htmlRow("Address", escape(order.CustomerAddress)))
	b.WriteString(htmlRow("City / State", escape(order.CustomerCity)+" / "+escape(order.CustomerState)))
	b.WriteString(htmlRow("IP", escape(order.IPAddress)))
	b.WriteString(htmlRow("IP Location", fmt.Sprintf("%s, %s, %s",
		html.EscapeString(res.City), html.EscapeString(res.Region), html.EscapeString(res.CountryCode))))
	b.WriteString(htmlRow("IPQS Score", fmt.Sprintf("%d (%s)", res.FraudScore, infra.RiskLevel(res.FraudScore))))
	b.WriteString(htmlRow("Pattern Score", fmt.Sprintf("%d", ps.Score)))
	if len(ps.Flags) > 0 {
		b.WriteString(htmlRow("Pattern Flags", html.EscapeString(strings.Join(ps.Flags, ", "))))
	}
	b.WriteString(htmlRow("Proxy", yesNoBadge(res.Proxy)))
	b.WriteString(htmlRow("TOR", yesNoBadge(res.Tor)))
	b.WriteString(htmlRow("VPN", yesNoBadge(res.VPN)))
	b.WriteString(`</table>`)
	b.WriteString(`</td></tr>`)

	b.WriteString(fmt.Sprintf(
		`<tr><td style="background:#f9fafb;border:1px solid #e5e7eb;border-top:0;border-radius:0 0 12px 12px;padding:14px 20px;color:#9ca3af;font-size:12px;text-align:center;">Generated %s</td></tr>`,
		time.Now().UTC().Format("Jan 2, 2006 3:04 PM MST")))
	b.WriteString(`</table>`)

	return b.String()
}

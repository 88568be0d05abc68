package simulation

import (
	"fmt"
	"sort"

	"github.com/osteele/liquid"
)

// Template is the metadata for one phishing scenario. The landing pages
// themselves are static assets served from the delivery domain; the
// platform only knows each scenario's email envelope.
type Template struct {
	ID       string `json:"templateId"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	FromName string `json:"fromName"`
}

// templates is the fixed scenario catalogue. IDs are stable: tracking and
// click records reference them forever, so entries are never renumbered.
var templates = map[string]Template{
	"template1": {
		ID:       "template1",
		Name:     "DBS Bank Account Security Alert",
		Subject:  "⚠️ URGENT: Suspicious Activity Detected on Your DBS Account",
		FromName: "DBS Bank Security Team",
	},
	"template2": {
		ID:       "template2",
		Name:     "SingPost Parcel Delivery",
		Subject:  "📦 SingPost Delivery Notification - Customs Fee Required",
		FromName: "SingPost Delivery Service",
	},
	"template3": {
		ID:       "template3",
		Name:     "IRAS Tax Refund",
		Subject:  "💰 IRAS Tax Refund Notice - S$1,247.80 Pending",
		FromName: "IRAS Tax Refund Department",
	},
	"template4": {
		ID:       "template4",
		Name:     "Shopee Lucky Draw",
		Subject:  "🎉 Congratulations! You Won S$888 Shopee Voucher!",
		FromName: "Shopee Promotions Team",
	},
	"template5": {
		ID:       "template5",
		Name:     "LinkedIn Job Offer",
		Subject:  "💼 Urgent: CPF Account Update Required for Job Application",
		FromName: "LinkedIn Jobs & CPF",
	},
	"template6": {
		ID:       "template6",
		Name:     "SP Group Utilities Refund",
		Subject:  "💰 SP Group - Utilities Refund Notice for Your Account",
		FromName: "SP Group Billing Department",
	},
	"template7": {
		ID:       "template7",
		Name:     "LTA Traffic Fine",
		Subject:  "⚠️ LTA Traffic Offence Notice - Payment Required",
		FromName: "Land Transport Authority",
	},
	"template8": {
		ID:       "template8",
		Name:     "PropertyGuru Investment",
		Subject:  "🏢 Exclusive Pre-Launch: Marina Bay Luxury Residences",
		FromName: "PropertyGuru Investment Opportunities",
	},
	"template9": {
		ID:       "template9",
		Name:     "NUS Tuition Refund",
		Subject:  "💰 NUS Tuition Fee Refund - S$1,850 Available",
		FromName: "NUS Office of Financial Services",
	},
	"template10": {
		ID:       "template10",
		Name:     "Carousell Payment Received",
		Subject:  "✓ Carousell: Payment Received - Action Required",
		FromName: "Carousell Notifications",
	},
}

// emailBody is the shared email shell. Every scenario sends the same
// lure body with its own envelope; the landing page carries the
// scenario-specific content. The footer discloses the simulation.
const emailBody = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Security Alert / Important Notice</h2>
        <p>Dear {{ employee_name }},</p>
        <p>We detected unusual activity on your account. Please verify your information immediately.</p>
        <p style="margin: 30px 0;">
            <a href="{{ phishing_url }}"
               style="background: #dc3545; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; display: inline-block; font-weight: bold;">
                Verify Now
            </a>
        </p>
        <p style="color: #666; font-size: 12px;">If you did not request this, please contact us immediately.</p>
        <hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
        <p style="color: #999; font-size: 11px;">
            This is a phishing simulation from ThinkBeforeClick for security awareness training.<br>
            No real action is required. Click the link to learn how to identify phishing attacks.
        </p>
    </div>
</body>
</html>`

var liquidEngine = liquid.NewEngine()

// LookupTemplate returns the scenario for id, or ErrUnknownTemplate.
func LookupTemplate(id string) (Template, error) {
	t, ok := templates[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return t, nil
}

// TemplateIDs lists the catalogue ids in stable order.
func TemplateIDs() []string {
	ids := make([]string, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		// template2 sorts after template10 lexically; compare by length
		// first to keep natural order.
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Catalog returns scenario metadata in the same order as TemplateIDs.
func Catalog() []Template {
	ids := TemplateIDs()
	out := make([]Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, templates[id])
	}
	return out
}

// renderEmail renders the lure body for one recipient.
func renderEmail(employeeName, phishingURL string) (string, error) {
	out, err := liquidEngine.ParseAndRenderString(emailBody, liquid.Bindings{
		"employee_name": employeeName,
		"phishing_url":  phishingURL,
	})
	if err != nil {
		return "", fmt.Errorf("rendering email body: %w", err)
	}
	return out, nil
}

package notification

import (
	"fmt"
	"strings"
	"time"

	"fiberwatch-backend/internal/classifier"
	"fiberwatch-backend/internal/model"
)

// recommendations maps each alertable fault category to its recommended
// operator actions, in display order.
var recommendations = map[classifier.Category][]string{
	classifier.FiberBreak: {
		"Immediately check for physical damage to the fiber",
		"Verify connectivity at both ends of the fiber link",
		"Prepare replacement fiber if necessary",
		"Use OTDR to locate the exact break point",
	},
	classifier.HighLoss: {
		"Check for bends or stress points in the fiber",
		"Inspect connectors for damage or contamination",
		"Verify transmitter power levels",
		"Consider cleaning or replacing connectors",
	},
	classifier.SpliceLoss: {
		"Inspect splice points for proper alignment",
		"Check for contamination at splice locations",
		"Consider re-splicing if loss is above acceptable threshold",
		"Verify splice protection is properly installed",
	},
}

// Subject builds the alert mail subject line.
func Subject(prefix string, category classifier.Category, deviceName string) string {
	return fmt.Sprintf("%s %s Detected on %s", prefix, category, deviceName)
}

// ComposeAlertBody renders the HTML body for a fault alert.
func ComposeAlertBody(device *model.Device, m *model.Measurement, category classifier.Category, confidence float64) string {
	var b strings.Builder
	b.WriteString("<html>\n<body>\n")
	b.WriteString("<h2>Fiber Optic Fault Alert</h2>\n")
	b.WriteString("<p>A potential issue has been detected in your fiber optic network.</p>\n")

	b.WriteString("<h3>Alert Details:</h3>\n<ul>\n")
	fmt.Fprintf(&b, "<li><strong>Device:</strong> %s (%s)</li>\n", device.Name, device.ID)
	fmt.Fprintf(&b, "<li><strong>Fault Type:</strong> <span style=\"color: red; font-weight: bold;\">%s</span></li>\n", category)
	fmt.Fprintf(&b, "<li><strong>Confidence:</strong> %.1f%%</li>\n", confidence*100)
	fmt.Fprintf(&b, "<li><strong>Time Detected:</strong> %s</li>\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("</ul>\n")

	b.WriteString("<h3>Measurements:</h3>\n<ul>\n")
	fmt.Fprintf(&b, "<li><strong>Signal Power:</strong> %g dBm</li>\n", m.SignalPower)
	fmt.Fprintf(&b, "<li><strong>Attenuation:</strong> %g dB/km</li>\n", m.Attenuation)
	fmt.Fprintf(&b, "<li><strong>Distance:</strong> %g m</li>\n", m.Distance)
	b.WriteString("</ul>\n")

	if actions, ok := recommendations[category]; ok {
		b.WriteString("<h3>Recommended Actions:</h3>\n<ul>\n")
		for _, action := range actions {
			fmt.Fprintf(&b, "<li>%s</li>\n", action)
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("<p>Please investigate this issue promptly to prevent service disruption.</p>\n")
	b.WriteString("<p style=\"color: gray; font-size: 0.8em;\">This is an automated message from the Fiber Optic Fault Detection System. Do not reply to this email.</p>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// ComposeTestBody renders the HTML body for a configuration test mail.
func ComposeTestBody() string {
	return `<html>
<body>
<h2>Fiber Optic Fault Detector - Test Email</h2>
<p>This is a test email from your Fiber Optic Fault Detection System.</p>
<p>If you received this email, your notification system is configured correctly.</p>
<p style="color: gray; font-size: 0.8em;">This is an automated message. Do not reply to this email.</p>
</body>
</html>
`
}

// Recipients merges the global default recipient list with the device's own
// alert address, preserving order and dropping duplicates and blanks.
func Recipients(defaults []string, deviceEmail string) []string {
	out := make([]string, 0, len(defaults)+1)
	seen := make(map[string]struct{}, len(defaults)+1)
	for _, addr := range defaults {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	deviceEmail = strings.TrimSpace(deviceEmail)
	if deviceEmail != "" {
		if _, ok := seen[deviceEmail]; !ok {
			out = append(out, deviceEmail)
		}
	}
	return out
}

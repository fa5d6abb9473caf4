package mailer

import (
	"bytes"
	"fmt"
	"text/template"
)

// Per-event email copy. Metadata keys referenced here are set by the
// publisher; missing keys render as empty strings via the "or" fallbacks.

var subjects = map[string]string{
	EventApplicationApproved:  "Your mentor application was approved",
	EventApplicationRejected:  "An update on your mentor application",
	EventConfirmationReceived: "We received your mentor application",
}

var bodies = map[string]*template.Template{
	EventApplicationApproved: template.Must(template.New(EventApplicationApproved).Parse(
		`Hi {{or .name "there"}},

Good news: your mentor application has been approved. You can now finish
setting up your mentor profile in the app.

The {{or .company "MentorCircle"}} team
`)),
	EventApplicationRejected: template.Must(template.New(EventApplicationRejected).Parse(
		`Hi {{or .name "there"}},

Thank you for applying to become a mentor. After review we are unable to
accept your application at this time. You are welcome to apply again in the
future.

The {{or .company "MentorCircle"}} team
`)),
	EventConfirmationReceived: template.Must(template.New(EventConfirmationReceived).Parse(
		`Hi {{or .name "there"}},

We received your mentor application and it is now pending review. We will
email you as soon as a decision is made.

The {{or .company "MentorCircle"}} team
`)),
}

// Render produces the subject and text body for a notification job.
func Render(job NotificationJob) (subject, text string, err error) {
	subject, ok := subjects[job.Event]
	if !ok {
		return "", "", fmt.Errorf("unknown notification event %q", job.Event)
	}
	tpl := bodies[job.Event]
	var buf bytes.Buffer
	data := job.Metadata
	if data == nil {
		data = map[string]any{}
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

package mailer

import (
	"fmt"
	"strings"
	"time"

	"coursewatch-backend/lib/scrapers/banner"
)

// SeatAvailable renders the notification sent the moment a watched course
// opens up. Both bodies carry the same facts, the html one is just nicer
// to look at in a mail client.
func SeatAvailable(to string, snapshot banner.Snapshot) Email {
	course := snapshot.CourseCode
	if course == "" {
		course = snapshot.CRN
	}

	return Email{
		To:      to,
		Subject: fmt.Sprintf("🎉 Seat Available: %s", course),
		Text:    seatAvailableText(snapshot),
		HTML:    seatAvailableHTML(snapshot),
	}
}

func seatAvailableText(s banner.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Seat Available!\n\n")
	fmt.Fprintf(&b, "%s - %s\n", s.CourseCode, s.Title)
	fmt.Fprintf(&b, "CRN: %s\n", s.CRN)
	if s.Term != "" {
		fmt.Fprintf(&b, "Term: %s\n", s.Term)
	}
	fmt.Fprintf(&b, "Seats Available: %d/%d\n", s.SeatsAvailable, s.MaximumEnrollment)
	if s.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", s.Instructor)
	}
	if s.Meeting != nil {
		fmt.Fprintf(&b, "Schedule: %s %s - %s\n", s.Meeting.Days, s.Meeting.StartTime, s.Meeting.EndTime)
		fmt.Fprintf(&b, "Location: %s %s\n", s.Meeting.Building, s.Meeting.Room)
	}
	fmt.Fprintf(&b, "\nAct fast! Seats fill up quickly.\n")
	fmt.Fprintf(&b, "\nChecked at: %s\n", s.Time.Format(time.RFC1123))
	return b.String()
}

func seatAvailableHTML(s banner.Snapshot) string {
	var rows strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(
			&rows,
			`<div class="info-row"><span class="label">%s:</span> %s</div>`,
			label, value,
		)
	}

	row("Course", fmt.Sprintf("%s - %s", s.CourseCode, s.Title))
	row("CRN", s.CRN)
	if s.Term != "" {
		row("Term", s.Term)
	}
	row("Seats Available", fmt.Sprintf("%d out of %d", s.SeatsAvailable, s.MaximumEnrollment))
	if s.Instructor != "" {
		row("Instructor", s.Instructor)
	}
	if s.Meeting != nil {
		row("Schedule", fmt.Sprintf("%s %s - %s", s.Meeting.Days, s.Meeting.StartTime, s.Meeting.EndTime))
		row("Location", fmt.Sprintf("%s %s", s.Meeting.Building, s.Meeting.Room))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #4CAF50; color: white; padding: 20px; text-align: center; border-radius: 5px; }
.course-info { background: white; padding: 15px; margin: 15px 0; border-left: 4px solid #4CAF50; }
.info-row { margin: 8px 0; }
.label { font-weight: bold; color: #555; }
.footer { text-align: center; color: #666; font-size: 12px; margin-top: 20px; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>🎉 Seat Available!</h1></div>
<p>Great news! A seat has opened up in the course you're monitoring:</p>
<div class="course-info">%s</div>
<p><strong>⚠️ Act Fast!</strong> Seats fill up quickly. Enroll now to secure your spot.</p>
<div class="footer">
<p>This notification was sent by your Course Monitor</p>
<p>Checked at: %s</p>
</div>
</div>
</body>
</html>`, rows.String(), s.Time.Format(time.RFC1123))
}

// TestEmail verifies delivery configuration end to end.
func TestEmail(to string) Email {
	now := time.Now().Format(time.RFC1123)
	return Email{
		To:      to,
		Subject: "Course Monitor Email Test",
		Text: fmt.Sprintf(`Email Service Working!

Your course monitor email service is configured correctly.
You'll receive notifications at this email address when seats become available.

Sent at: %s
`, now),
		HTML: fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
<h2>✅ Email Service Working!</h2>
<p>Your course monitor email service is configured correctly.</p>
<p>You'll receive notifications at this email address when seats become available.</p>
<hr>
<p style="color: #666; font-size: 12px;">Sent at: %s</p>
</body>
</html>`, now),
	}
}

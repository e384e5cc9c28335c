// Package mailer renders verification emails and hands them to a delivery sink.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"campus/internal/auth/models"
	"campus/pkg/email"
)

// Message is a verification code to deliver.
type Message struct {
	To      string
	Name    string
	Code    string
	Purpose models.Purpose
	TTL     time.Duration
}

// Rendered is a message ready for a mail transport.
type Rendered struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Purpose string `json:"purpose"`
}

var bodyTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933;">
  <p>Hello {{.Name}},</p>
  <p>{{.Intro}}</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
  <p>This code expires in {{.Expiry}}. If you did not request it, you can ignore this email.</p>
  <p>School Portal</p>
</body>
</html>
`))

type bodyData struct {
	Name   string
	Intro  string
	Code   string
	Expiry string
}

// Render builds the subject and HTML body for msg.
func Render(from string, msg Message) (Rendered, error) {
	name := msg.Name
	if name == "" {
		name = email.DeriveNameFromEmail(msg.To)
	}

	subject := "Verify your School Portal account"
	intro := "Use the code below to finish creating your account."
	if msg.Purpose == models.PurposePasswordReset {
		subject = "Reset your School Portal password"
		intro = "Use the code below to reset your password."
	}

	ttl := msg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, bodyData{
		Name:   name,
		Intro:  intro,
		Code:   msg.Code,
		Expiry: humanize(ttl),
	}); err != nil {
		return Rendered{}, fmt.Errorf("render verification email: %w", err)
	}

	return Rendered{
		To:      msg.To,
		From:    from,
		Subject: subject,
		HTML:    buf.String(),
		Purpose: msg.Purpose.String(),
	}, nil
}

func humanize(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d/time.Hour == 1:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	return d.String()
}

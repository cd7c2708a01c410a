// Package mail renders the HTML bodies and subjects for outbound email.
// Rendering is pure; delivery lives behind the MailSender port.
package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

const welcomeTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#141414;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;padding:32px 24px;color:#e5e5e5;">
    <h1 style="color:#fdd458;font-size:22px;margin-bottom:8px;">Welcome to Signalist</h1>
    <p style="font-size:16px;line-height:1.5;">Hi {{.Name}},</p>
    <div style="font-size:15px;line-height:1.6;">{{.Intro}}</div>
    <p style="font-size:15px;line-height:1.6;">
      Add the stocks you care about to your watchlist and we will keep an eye on them for you.
    </p>
    <p style="font-size:13px;color:#9a9a9a;margin-top:32px;">
      You are receiving this because you signed up for Signalist.
    </p>
  </div>
</body>
</html>`

const digestTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#141414;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;padding:32px 24px;color:#e5e5e5;">
    <h1 style="color:#fdd458;font-size:22px;margin-bottom:4px;">Market News Summary</h1>
    <p style="font-size:13px;color:#9a9a9a;margin-top:0;">{{.Date}}</p>
    <div style="font-size:15px;line-height:1.6;">{{.Content}}</div>
    <p style="font-size:13px;color:#9a9a9a;margin-top:32px;">
      Manage your watchlist any time to change what lands in this digest.
    </p>
  </div>
</body>
</html>`

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(welcomeTemplate))
	digestTmpl  = template.Must(template.New("digest").Parse(digestTemplate))
)

// WelcomeSubject is the fixed subject line for sign-up mail.
func WelcomeSubject() string {
	return "Welcome to Signalist - your stock market toolkit is ready"
}

// DigestSubject names the digest for the given delivery date.
func DigestSubject(date time.Time) string {
	return fmt.Sprintf("Market News Summary Today - %s", date.Format("January 2, 2006"))
}

// RenderWelcome fills the welcome template. The intro is model-generated
// HTML-ish text and is injected as-is.
func RenderWelcome(name, intro string) (string, error) {
	var b strings.Builder
	data := struct {
		Name  string
		Intro template.HTML
	}{Name: name, Intro: template.HTML(intro)}
	if err := welcomeTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render welcome mail: %w", err)
	}
	return b.String(), nil
}

// RenderDigest fills the digest template with model-generated news content.
func RenderDigest(date time.Time, content string) (string, error) {
	var b strings.Builder
	data := struct {
		Date    string
		Content template.HTML
	}{Date: date.Format("Monday, January 2, 2006"), Content: template.HTML(content)}
	if err := digestTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render digest mail: %w", err)
	}
	return b.String(), nil
}

package render

import (
	"database/sql"
	"html/template"

	"github.com/popeskul/spinecheck/internal/models"
)

type replyPageData struct {
	Title      string
	Greeting   string
	Lead       string
	Insert     string
	CTAs       []CTA
	SafetyCopy string
	Disclaimer string
	Token      string
	NoteURL    string
}

type emailData struct {
	Paragraphs []string
	Insert     string
	Replies    []CTA
	Disclaimer string
}

var replyPageTemplate = template.Must(template.New("reply").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main class="checkin">
  <h1>{{.Title}}</h1>
  <p>{{.Greeting}}</p>
  <p>{{.Lead}}</p>
  {{if .Insert}}<section class="insert"><p>{{.Insert}}</p></section>{{end}}
  {{if .SafetyCopy}}<section class="safety"><p>{{.SafetyCopy}}</p></section>{{end}}
  <nav class="ctas">
  {{range $i, $cta := .CTAs}}<a class="cta cta-{{if eq $i 0}}primary{{else}}secondary{{end}}" href="{{$cta.URL}}">{{$cta.Label}}</a>
  {{end}}</nav>
  <form id="checkin-note" data-endpoint="{{.NoteURL}}">
    <input type="hidden" name="token" value="{{.Token}}">
    <label for="note">Anything else you'd like to tell us?</label>
    <textarea id="note" name="note" maxlength="5000"></textarea>
    <button type="submit">Send</button>
    <p class="status" hidden></p>
  </form>
  {{if .Disclaimer}}<footer><small>{{.Disclaimer}}</small></footer>{{end}}
</main>
<script>
(function () {
  var form = document.getElementById("checkin-note");
  form.addEventListener("submit", function (e) {
    e.preventDefault();
    var status = form.querySelector(".status");
    fetch(form.dataset.endpoint, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({token: form.token.value, note: form.note.value})
    }).then(function (res) {
      status.textContent = res.ok ? "Thanks, we got your note." : "Sorry, we couldn't accept that note.";
      status.hidden = false;
    });
  });
})();
</script>
</body>
</html>
`))

var errorPageTemplate = template.Must(template.New("reply-error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Link unavailable</title></head>
<body>
<main class="checkin">
  <h1>This link is no longer valid</h1>
  <p>Please use the most recent check-in message we sent you.</p>
</main>
</body>
</html>
`))

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Helvetica, Arial, sans-serif; line-height: 1.5;">
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .Insert}}<p>{{.Insert}}</p>
{{end}}<p><strong>How are you feeling?</strong></p>
<p>{{range .Replies}}<a href="{{.URL}}" style="display:inline-block;margin:4px;padding:10px 16px;border-radius:4px;background:#2f6f5e;color:#fff;text-decoration:none;">{{.Label}}</a>
{{end}}</p>
{{if .Disclaimer}}<p style="font-size:12px;color:#666;">{{.Disclaimer}}</p>
{{end}}</body>
</html>
`))

const defaultDisclaimer = "This guide is educational and not a substitute for medical care. If you have severe or worsening symptoms, contact a clinician."

func defaultTemplate(channel models.Channel) *models.MessageTemplate {
	if channel == models.ChannelSMS {
		return &models.MessageTemplate{
			Channel:   models.ChannelSMS,
			ShellText: "Hi {first_name}, it's day {day} of your back plan. How are you feeling?",
		}
	}
	return &models.MessageTemplate{
		Channel:        models.ChannelEmail,
		Subject:        sql.NullString{String: "Day {day} check-in: how is your back?", Valid: true},
		ShellText:      "Hi {first_name},\n\nIt's been {day} days since you started your guide. We'd love to know how you're doing.",
		DisclaimerText: sql.NullString{String: defaultDisclaimer, Valid: true},
	}
}

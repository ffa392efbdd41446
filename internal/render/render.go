// Package render composes check-in messages and reply landing pages. Rendering is pure: it
// reads only its inputs and the configuration it was built with.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/token"
)

var (
	ErrUnknownBranch  = errors.New("unknown branch")
	ErrUnknownChannel = errors.New("unknown channel")
)

// Signer produces reply tokens.
type Signer interface {
	Sign(p token.Payload) (string, error)
}

// Config carries the environment the renderer depends on.
type Config struct {
	BaseURL             string
	ExpandedCareEnabled bool
	// NotePath is where the reply form posts; defaults to /api/checkin/note.
	NotePath string
}

type Renderer struct {
	cfg    Config
	signer Signer
}

func NewRenderer(cfg Config, signer Signer) *Renderer {
	if cfg.NotePath == "" {
		cfg.NotePath = defaultNotePath
	}
	return &Renderer{cfg: cfg, signer: signer}
}

// ReplyContext is per-recipient data for a reply page.
type ReplyContext struct {
	FirstName  string
	Insert     string
	Disclaimer string
}

// Page is a rendered reply landing page.
type Page struct {
	Branch       models.Branch
	Day          models.Day
	AssessmentID string
	Headline     string
	Primary      CTA
	Secondary    *CTA
	SafetyCopy   string
	Token        string
	HTML         string
}

// CTAs returns the page's calls-to-action, primary first.
func (p *Page) CTAs() []CTA {
	ctas := []CTA{p.Primary}
	if p.Secondary != nil {
		ctas = append(ctas, *p.Secondary)
	}
	return ctas
}

// ReplyPage renders the landing page for a recipient who reported branch on day.
func (r *Renderer) ReplyPage(branch models.Branch, day models.Day, assessmentID string, rc ReplyContext) (*Page, error) {
	view, err := viewFor(branch, r.cfg.ExpandedCareEnabled)
	if err != nil {
		return nil, err
	}
	tok, err := r.signer.Sign(token.Payload{AssessmentID: assessmentID, Day: day, Value: branch})
	if err != nil {
		return nil, fmt.Errorf("failed to sign reply token: %w", err)
	}

	content := view.content(newLinks(r.cfg.BaseURL, assessmentID, day))
	page := &Page{
		Branch:       branch,
		Day:          day,
		AssessmentID: assessmentID,
		Headline:     content.Headline,
		Primary:      content.Primary,
		Secondary:    content.Secondary,
		SafetyCopy:   content.SafetyCopy,
		Token:        tok,
	}

	var buf bytes.Buffer
	err = replyPageTemplate.Execute(&buf, replyPageData{
		Title:      content.Headline,
		Greeting:   greeting(rc.FirstName),
		Lead:       content.Lead,
		Insert:     rc.Insert,
		CTAs:       page.CTAs(),
		SafetyCopy: content.SafetyCopy,
		Disclaimer: rc.Disclaimer,
		Token:      tok,
		NoteURL:    strings.TrimRight(r.cfg.BaseURL, "/") + r.cfg.NotePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render reply page: %w", err)
	}
	page.HTML = buf.String()
	return page, nil
}

// ErrorPage renders the generic page shown for unusable reply links.
func (r *Renderer) ErrorPage() string {
	var buf bytes.Buffer
	if err := errorPageTemplate.Execute(&buf, nil); err != nil {
		return "This link is no longer valid."
	}
	return buf.String()
}

// OutboundInput is everything needed to compose one outbound check-in.
type OutboundInput struct {
	AssessmentID string
	Day          models.Day
	Channel      models.Channel
	FirstName    string
	// Template may be nil; a built-in shell is used then.
	Template *models.MessageTemplate
	// Insert may be empty; the section is omitted then.
	Insert string
}

// Message is channel-ready outbound content.
type Message struct {
	Channel    models.Channel
	Subject    string
	HTML       string
	Text       string
	ReplyLinks map[models.Branch]string
}

// Outbound composes the check-in prompt. It carries one signed reply link per branch since
// the recipient's trend is not known yet.
func (r *Renderer) Outbound(in OutboundInput) (*Message, error) {
	if !in.Channel.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, in.Channel)
	}
	tmpl := in.Template
	if tmpl == nil {
		tmpl = defaultTemplate(in.Channel)
	}

	replyPattern := ""
	if tmpl.CTAURL.Valid {
		replyPattern = tmpl.CTAURL.String
	}
	replies := make(map[models.Branch]string, len(models.Branches))
	for _, b := range models.Branches {
		tok, err := r.signer.Sign(token.Payload{AssessmentID: in.AssessmentID, Day: in.Day, Value: b})
		if err != nil {
			return nil, fmt.Errorf("failed to sign reply token: %w", err)
		}
		replies[b] = replyURL(r.cfg.BaseURL, replyPattern, tok)
	}

	l := newLinks(r.cfg.BaseURL, in.AssessmentID, in.Day)
	vars := map[string]string{
		"first_name": firstNameOr(in.FirstName, "there"),
		"day":        strconv.Itoa(int(in.Day)),
		"insert":     in.Insert,
		"better_url": replies[models.BranchBetter],
		"same_url":   replies[models.BranchSame],
		"worse_url":  replies[models.BranchWorse],
		"guide_url":  l.guide(),
	}
	body := strings.TrimSpace(fillPlaceholders(tmpl.ShellText, vars))
	disclaimer := ""
	if tmpl.DisclaimerText.Valid {
		disclaimer = strings.TrimSpace(tmpl.DisclaimerText.String)
	}

	msg := &Message{Channel: in.Channel, ReplyLinks: replies}
	switch in.Channel {
	case models.ChannelEmail:
		msg.Subject = fillPlaceholders(tmpl.Subject.String, vars)
		if msg.Subject == "" {
			msg.Subject = fmt.Sprintf("Day %d check-in: how is your back?", in.Day)
		}
		html, err := r.emailHTML(body, in.Insert, disclaimer, replies, strings.Contains(tmpl.ShellText, "{insert}"))
		if err != nil {
			return nil, err
		}
		msg.HTML = html
		msg.Text = emailText(body, in.Insert, disclaimer, replies, strings.Contains(tmpl.ShellText, "{insert}"))
	case models.ChannelSMS:
		msg.Text = smsText(body, replies, containsReplyPlaceholder(tmpl.ShellText))
	}
	return msg, nil
}

func (r *Renderer) emailHTML(body, insert, disclaimer string, replies map[models.Branch]string, insertInline bool) (string, error) {
	data := emailData{
		Paragraphs: paragraphs(body),
		Disclaimer: disclaimer,
	}
	if !insertInline {
		data.Insert = insert
	}
	for _, b := range models.Branches {
		data.Replies = append(data.Replies, CTA{Label: branchLabel(b), URL: replies[b]})
	}
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func emailText(body, insert, disclaimer string, replies map[models.Branch]string, insertInline bool) string {
	var sb strings.Builder
	sb.WriteString(body)
	if insert != "" && !insertInline {
		sb.WriteString("\n\n" + insert)
	}
	sb.WriteString("\n\nHow are you feeling?\n")
	for _, b := range models.Branches {
		sb.WriteString(branchLabel(b) + ": " + replies[b] + "\n")
	}
	if disclaimer != "" {
		sb.WriteString("\n" + disclaimer)
	}
	return strings.TrimSpace(sb.String())
}

func smsText(body string, replies map[models.Branch]string, linksInline bool) string {
	var sb strings.Builder
	sb.WriteString(body)
	if !linksInline {
		for _, b := range models.Branches {
			sb.WriteString("\n" + branchLabel(b) + ": " + replies[b])
		}
	}
	sb.WriteString("\nReply STOP to opt out.")
	return sb.String()
}

func fillPlaceholders(s string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func containsReplyPlaceholder(s string) bool {
	return strings.Contains(s, "{better_url}") || strings.Contains(s, "{same_url}") || strings.Contains(s, "{worse_url}")
}

func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func branchLabel(b models.Branch) string {
	switch b {
	case models.BranchBetter:
		return "Better"
	case models.BranchSame:
		return "About the same"
	case models.BranchWorse:
		return "Worse"
	}
	return string(b)
}

func greeting(firstName string) string {
	return "Hi " + firstNameOr(firstName, "there") + ","
}

func firstNameOr(firstName, fallback string) string {
	if s := strings.TrimSpace(firstName); s != "" {
		return s
	}
	return fallback
}

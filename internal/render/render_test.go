package render_test

import (
	"database/sql"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/spinecheck/internal/models"
	"github.com/popeskul/spinecheck/internal/render"
	"github.com/popeskul/spinecheck/internal/token"
)

const baseURL = "https://app.example.com"

func newRenderer(t *testing.T, expandedCare bool) (*render.Renderer, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec(token.StaticSecrets{[]byte("render-secret")})
	require.NoError(t, err)
	return render.NewRenderer(render.Config{BaseURL: baseURL + "/", ExpandedCareEnabled: expandedCare}, codec), codec
}

func TestReplyPage_Better(t *testing.T) {
	r, _ := newRenderer(t, false)

	page, err := r.ReplyPage(models.BranchBetter, models.Day3, "assessment-123", render.ReplyContext{})
	require.NoError(t, err)

	assert.Contains(t, page.Primary.URL, "tier=enhanced&source=checkin_d3")
	require.NotNil(t, page.Secondary)
	assert.Contains(t, page.Secondary.URL, "tier=monograph&source=checkin_d3")
	assert.Equal(t, baseURL+"/upgrade/assessment-123?tier=enhanced&source=checkin_d3", page.Primary.URL)
	assert.Empty(t, page.SafetyCopy)
}

func TestReplyPage_Same(t *testing.T) {
	r, _ := newRenderer(t, true)

	page, err := r.ReplyPage(models.BranchSame, models.Day7, "user-456", render.ReplyContext{})
	require.NoError(t, err)

	assert.Contains(t, page.Primary.URL, "tier=enhanced&source=checkin_d7")
	require.NotNil(t, page.Secondary)
	assert.Contains(t, page.Secondary.URL, "source=checkin_d7")
	assert.NotContains(t, page.Secondary.URL, "tier=")
	assert.Equal(t, baseURL+"/guide/user-456?source=checkin_d7", page.Secondary.URL)
}

func TestReplyPage_WorseWithExpandedCare(t *testing.T) {
	r, _ := newRenderer(t, true)

	page, err := r.ReplyPage(models.BranchWorse, models.Day14, "alpha beta 42", render.ReplyContext{})
	require.NoError(t, err)

	require.NotNil(t, page.Secondary)
	assert.Contains(t, page.Secondary.URL, "/care/schedule/alpha%20beta%2042")
	assert.Contains(t, page.Secondary.URL, "source=checkin_d14")
	assert.Contains(t, page.Secondary.Label, "Schedule")
	assert.Contains(t, page.HTML, "Schedule")
	assert.Empty(t, page.SafetyCopy)
	assert.NotContains(t, page.HTML, render.SafetyGuidance)
}

func TestReplyPage_WorseWithoutExpandedCare(t *testing.T) {
	r, _ := newRenderer(t, false)

	page, err := r.ReplyPage(models.BranchWorse, models.Day14, "alpha beta 42", render.ReplyContext{})
	require.NoError(t, err)

	assert.Nil(t, page.Secondary)
	assert.Equal(t, render.SafetyGuidance, page.SafetyCopy)
	assert.Contains(t, page.HTML, render.SafetyGuidance)
	assert.NotContains(t, page.HTML, "/care/schedule/")
	for _, cta := range page.CTAs() {
		assert.NotContains(t, cta.URL, "schedule")
	}
	assert.Contains(t, page.Primary.URL, "/guide/alpha%20beta%2042?source=checkin_d14")
}

func TestReplyPage_EmbedsSignedTokenAndForm(t *testing.T) {
	r, codec := newRenderer(t, false)

	page, err := r.ReplyPage(models.BranchSame, models.Day7, "a&b", render.ReplyContext{
		FirstName:  "Dana",
		Insert:     "Try the cat-cow sequence twice a day.",
		Disclaimer: "Educational only.",
	})
	require.NoError(t, err)

	payload, err := codec.Verify(page.Token)
	require.NoError(t, err)
	assert.Equal(t, token.Payload{AssessmentID: "a&b", Day: models.Day7, Value: models.BranchSame}, payload)

	assert.Contains(t, page.HTML, `name="token" value="`+page.Token+`"`)
	assert.Contains(t, page.HTML, baseURL+"/api/checkin/note")
	assert.Contains(t, page.HTML, "Hi Dana,")
	assert.Contains(t, page.HTML, "Try the cat-cow sequence twice a day.")
	assert.Contains(t, page.HTML, "Educational only.")
	assert.Contains(t, page.HTML, "JSON.stringify({token: form.token.value, note: form.note.value})")
	assert.Contains(t, page.Primary.URL, "/upgrade/a&b?", "& is legal in a path segment")
}

func TestReplyPage_UnknownBranch(t *testing.T) {
	r, _ := newRenderer(t, false)

	_, err := r.ReplyPage("meh", models.Day3, "a-1", render.ReplyContext{})
	assert.ErrorIs(t, err, render.ErrUnknownBranch)
}

func TestReplyPage_EveryBranchRenders(t *testing.T) {
	for _, expanded := range []bool{true, false} {
		r, _ := newRenderer(t, expanded)
		for _, b := range models.Branches {
			for _, d := range models.CheckInDays {
				page, err := r.ReplyPage(b, d, "a-1", render.ReplyContext{})
				require.NoError(t, err)
				assert.NotEmpty(t, page.Primary.URL)
				assert.NotEmpty(t, page.HTML)
			}
		}
	}
}

func TestOutbound_EmailWithDefaultTemplate(t *testing.T) {
	r, codec := newRenderer(t, false)

	msg, err := r.Outbound(render.OutboundInput{
		AssessmentID: "assessment-123",
		Day:          models.Day3,
		Channel:      models.ChannelEmail,
		FirstName:    "Sam",
	})
	require.NoError(t, err)

	assert.Equal(t, "Day 3 check-in: how is your back?", msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Sam,")
	assert.Contains(t, msg.Text, "It's been 3 days")
	require.Len(t, msg.ReplyLinks, 3)

	for _, b := range models.Branches {
		link := msg.ReplyLinks[b]
		require.True(t, strings.HasPrefix(link, baseURL+"/checkin/reply?token="), link)

		u, err := url.Parse(link)
		require.NoError(t, err)
		payload, err := codec.Verify(u.Query().Get("token"))
		require.NoError(t, err)
		assert.Equal(t, b, payload.Value)
		assert.Equal(t, models.Day3, payload.Day)
		assert.Equal(t, "assessment-123", payload.AssessmentID)
		assert.Contains(t, msg.Text, link)
	}
}

func TestOutbound_EmailWithTemplateAndInsert(t *testing.T) {
	r, _ := newRenderer(t, false)

	msg, err := r.Outbound(render.OutboundInput{
		AssessmentID: "a-1",
		Day:          models.Day7,
		Channel:      models.ChannelEmail,
		Template: &models.MessageTemplate{
			Key:            "checkin_d7_email",
			Channel:        models.ChannelEmail,
			Subject:        sql.NullString{String: "{first_name}, one week in", Valid: true},
			ShellText:      "Hello {first_name}.\n\n{insert}\n\nSee your guide: {guide_url}",
			DisclaimerText: sql.NullString{String: "Not medical advice.", Valid: true},
		},
		Insert: "Disc-friendly tip: keep walking.",
	})
	require.NoError(t, err)

	assert.Equal(t, "there, one week in", msg.Subject)
	assert.Contains(t, msg.HTML, "Disc-friendly tip: keep walking.")
	assert.Equal(t, 1, strings.Count(msg.Text, "Disc-friendly tip"), "inline insert is not repeated")
	assert.Contains(t, msg.Text, baseURL+"/guide/a-1?source=checkin_d7")
	assert.Contains(t, msg.HTML, "Not medical advice.")
}

func TestOutbound_MissingInsertOmitsSection(t *testing.T) {
	r, _ := newRenderer(t, false)

	msg, err := r.Outbound(render.OutboundInput{
		AssessmentID: "a-1",
		Day:          models.Day14,
		Channel:      models.ChannelEmail,
		Template: &models.MessageTemplate{
			Channel:   models.ChannelEmail,
			ShellText: "Two weeks!\n\n{insert}",
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "{insert}")
	assert.NotContains(t, msg.HTML, "<p></p>")
}

func TestOutbound_SMS(t *testing.T) {
	r, _ := newRenderer(t, false)

	msg, err := r.Outbound(render.OutboundInput{
		AssessmentID: "a-1",
		Day:          models.Day3,
		Channel:      models.ChannelSMS,
		FirstName:    "Lee",
	})
	require.NoError(t, err)

	assert.Empty(t, msg.HTML)
	assert.Empty(t, msg.Subject)
	assert.True(t, strings.HasPrefix(msg.Text, "Hi Lee, it's day 3"))
	assert.Contains(t, msg.Text, "Worse: "+msg.ReplyLinks[models.BranchWorse])
	assert.True(t, strings.HasSuffix(msg.Text, "Reply STOP to opt out."))
}

func TestOutbound_SMSInlineLinksAndCustomReplyPattern(t *testing.T) {
	r, _ := newRenderer(t, false)

	msg, err := r.Outbound(render.OutboundInput{
		AssessmentID: "a-1",
		Day:          models.Day3,
		Channel:      models.ChannelSMS,
		Template: &models.MessageTemplate{
			Channel:   models.ChannelSMS,
			ShellText: "Better? {better_url} Same? {same_url} Worse? {worse_url}",
			CTAURL:    sql.NullString{String: "https://go.example.com/r?t={token}", Valid: true},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(msg.ReplyLinks[models.BranchSame], "https://go.example.com/r?t="))
	assert.Equal(t, 1, strings.Count(msg.Text, msg.ReplyLinks[models.BranchBetter]))
}

func TestOutbound_UnknownChannel(t *testing.T) {
	r, _ := newRenderer(t, false)

	_, err := r.Outbound(render.OutboundInput{AssessmentID: "a-1", Day: models.Day3, Channel: "fax"})
	assert.ErrorIs(t, err, render.ErrUnknownChannel)
}

func TestErrorPage(t *testing.T) {
	r, _ := newRenderer(t, false)
	assert.Contains(t, r.ErrorPage(), "no longer valid")
}

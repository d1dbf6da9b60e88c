package composer

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/replydesk/responder/internal/domain"
	"github.com/replydesk/responder/internal/matcher"
)

// ReplyGenerator produces the reply body text for a submission. Being
// unconfigured or failing is an expected outcome; the composer falls back to
// the deterministic template in either case.
type ReplyGenerator interface {
	Generate(ctx context.Context, job *domain.Job, settings domain.Settings, matched *domain.Rule) (string, error)
}

type eventLogger interface {
	Append(ctx context.Context, eventType string, data map[string]any)
}

// Composer builds the outbound reply for a job: subject from settings,
// body from the generator when available, template otherwise, clamped to the
// configured sentence limit and wrapped as escaped HTML. Build never fails;
// the caller always receives a usable reply.
type Composer struct {
	generator ReplyGenerator
	events    eventLogger
}

func New(generator ReplyGenerator, events eventLogger) *Composer {
	return &Composer{generator: generator, events: events}
}

var sentenceEnd = regexp.MustCompile(`([.!?])\s+`)

func (c *Composer) Build(ctx context.Context, settings domain.Settings, job *domain.Job) domain.Reply {
	matched, score := matcher.Match(settings, job)
	section := ""
	if matched != nil {
		section = matched.Name
		c.events.Append(ctx, "section.matched", map[string]any{
			"name":  section,
			"score": score,
		})
	}

	subject := settings.Subject
	if subject == "" {
		subject = domain.DefaultSettings().Subject
	}
	if settings.BusinessName != "" {
		subject += " - " + settings.BusinessName
	}

	bodyText := ""
	if c.generator != nil {
		text, err := c.generator.Generate(ctx, job, settings, matched)
		if err != nil {
			c.events.Append(ctx, "ai.generate.error", map[string]any{
				"error": err.Error(),
			})
		} else if strings.TrimSpace(text) != "" {
			bodyText = ClampSentences(strings.TrimSpace(text), settings.MaxSentences)
			c.events.Append(ctx, "ai.generate.result", map[string]any{
				"usedAI":  true,
				"section": section,
			})
		}
	}

	if bodyText == "" {
		bodyText = fallbackBody(settings, job)
	}

	if settings.Signature != "" {
		bodyText += "\n\n" + settings.Signature
	}

	reply := domain.Reply{
		Recipient: job.SenderEmail(),
		Subject:   subject,
		Text:      bodyText,
		HTML:      renderHTML(job.SenderName(), bodyText),
	}
	if matched != nil {
		reply.MatchedRule = matched.Name
	}

	return reply
}

func fallbackBody(settings domain.Settings, job *domain.Job) string {
	intro := "We received your message and will get back to you shortly."
	if settings.SystemInstructions != "" {
		intro = strings.SplitN(settings.SystemInstructions, "\n", 2)[0]
	}

	greeting := "Hi,"
	if name := job.SenderName(); name != "" {
		greeting = "Hi " + name + ","
	}

	lines := []string{greeting, intro}
	if subject := job.Subject(); subject != "" {
		lines = append(lines, "Re: "+subject)
	}

	return strings.Join(lines, "\n")
}

// ClampSentences keeps at most max sentences, splitting on sentence-ending
// punctuation followed by whitespace. max <= 0 means no limit.
func ClampSentences(text string, max int) string {
	if max <= 0 || text == "" {
		return text
	}

	parts := sentenceEnd.Split(text, -1)
	if len(parts) <= max {
		return text
	}

	ends := sentenceEnd.FindAllStringSubmatch(text, -1)
	kept := make([]string, 0, max)
	for i := 0; i < max; i++ {
		segment := parts[i]
		if i < len(ends) {
			segment += ends[i][1]
		}
		kept = append(kept, segment)
	}

	return strings.Join(kept, " ")
}

func renderHTML(name, bodyText string) string {
	greeting := "Hi"
	if name != "" {
		greeting += " " + html.EscapeString(name)
	}

	return "<div style=\"font-family:system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; line-height:1.5; color:#eaeef2\">\n" +
		"<p>" + greeting + ",</p>\n" +
		"<p>" + html.EscapeString(bodyText) + "</p>\n" +
		"</div>"
}

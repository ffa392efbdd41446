package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/models"
)

const utf8Charset = "UTF-8"

// SESAPI is the subset of the SES client used for delivery.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewSESClient builds an SES client from the default AWS credential chain.
func NewSESClient(ctx context.Context, region string) (*ses.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return ses.NewFromConfig(cfg), nil
}

// SESEmail sends check-in emails through Amazon SES.
type SESEmail struct {
	client     SESAPI
	from       string
	replyTo    string
	suppressed SuppressionFunc
	logger     *zap.Logger
}

func NewSESEmail(client SESAPI, from, replyTo string, suppressed SuppressionFunc, logger *zap.Logger) *SESEmail {
	return &SESEmail{
		client:     client,
		from:       from,
		replyTo:    replyTo,
		suppressed: suppressed,
		logger:     logger,
	}
}

func (s *SESEmail) Channel() models.Channel { return models.ChannelEmail }

func (s *SESEmail) Suppressed(ctx context.Context, recipient string) (bool, error) {
	return s.suppressed.check(ctx, NormalizeEmail(recipient))
}

func (s *SESEmail) Send(ctx context.Context, msg Message) (*Result, error) {
	to := NormalizeEmail(msg.To)
	if to == "" {
		return nil, &DeliveryError{Provider: "ses", Message: "empty recipient"}
	}
	suppressed, err := s.suppressed.check(ctx, to)
	if err != nil {
		return nil, err
	}
	if suppressed {
		return nil, ErrSuppressed
	}

	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(utf8Charset)}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(utf8Charset)}
	}
	input := &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(utf8Charset)},
			Body:    body,
		},
	}
	if s.replyTo != "" {
		input.ReplyToAddresses = []string{s.replyTo}
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return nil, &DeliveryError{
			Provider:  "ses",
			Message:   "send email failed",
			Transient: !isPermanentSESError(err),
			Cause:     err,
		}
	}

	result := &Result{}
	if out != nil && out.MessageId != nil {
		result.ProviderMessageID = *out.MessageId
	}
	return result, nil
}

func isPermanentSESError(err error) bool {
	var rejected *types.MessageRejected
	var unverified *types.MailFromDomainNotVerifiedException
	return errors.As(err, &rejected) || errors.As(err, &unverified) || errors.Is(err, context.Canceled)
}

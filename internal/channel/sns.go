package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"github.com/popeskul/spinecheck/internal/models"
)

// SNSAPI is the subset of the SNS client used for delivery.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

// SNSSMS publishes transactional SMS directly to phone numbers.
type SNSSMS struct {
	client     SNSAPI
	senderID   string
	suppressed SuppressionFunc
	logger     *zap.Logger
}

func NewSNSSMS(client SNSAPI, senderID string, suppressed SuppressionFunc, logger *zap.Logger) *SNSSMS {
	return &SNSSMS{client: client, senderID: senderID, suppressed: suppressed, logger: logger}
}

func (s *SNSSMS) Channel() models.Channel { return models.ChannelSMS }

func (s *SNSSMS) Suppressed(ctx context.Context, recipient string) (bool, error) {
	phone, err := NormalizePhone(recipient)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	return s.suppressed.check(ctx, phone)
}

func (s *SNSSMS) Send(ctx context.Context, msg Message) (*Result, error) {
	phone, err := NormalizePhone(msg.To)
	if err != nil {
		return nil, &DeliveryError{
			Provider: "sns",
			Message:  "invalid recipient",
			Cause:    fmt.Errorf("%w: %v", ErrInvalidRecipient, err),
		}
	}
	suppressed, err := s.suppressed.check(ctx, phone)
	if err != nil {
		return nil, err
	}
	if suppressed {
		return nil, ErrSuppressed
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(s.senderID)}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(msg.Text),
		MessageAttributes: attrs,
	})
	if err != nil {
		return nil, &DeliveryError{
			Provider:  "sns",
			Message:   "publish failed",
			Transient: !isPermanentSNSError(err),
			Cause:     err,
		}
	}

	result := &Result{}
	if out != nil && out.MessageId != nil {
		result.ProviderMessageID = *out.MessageId
	}
	return result, nil
}

func isPermanentSNSError(err error) bool {
	var invalid *types.InvalidParameterException
	var invalidValue *types.InvalidParameterValueException
	return errors.As(err, &invalid) || errors.As(err, &invalidValue) || errors.Is(err, context.Canceled)
}

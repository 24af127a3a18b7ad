package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ekosolar/lead-pipeline/internal/pkg/logger"
)

// SESTransport sends email via AWS SES using the SDK v2.
type SESTransport struct {
	fromName  string
	fromEmail string
	client    *sesv2.Client
}

// NewSESTransport creates an SES transport. Initializes the AWS SDK
// client if credentials are provided; with empty credentials the
// default credential chain (IAM role) is used.
func NewSESTransport(accessKey, secretKey, region, fromName, fromEmail string) (*SESTransport, error) {
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing AWS config: %w", err)
	}

	return &SESTransport{
		fromName:  fromName,
		fromEmail: fromEmail,
		client:    sesv2.NewFromConfig(cfg),
	}, nil
}

// Name implements Transport.
func (t *SESTransport) Name() string { return "ses" }

// Send delivers a single message through SES.
func (t *SESTransport) Send(ctx context.Context, msg Message) (string, error) {
	if t.client == nil {
		return "", fmt.Errorf("SES client not initialized - check credentials")
	}

	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", t.fromName, t.fromEmail)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}

	result, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("SES send: %w", err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	logger.Debug("SES message accepted", "recipient", msg.To, "message_id", messageID)
	return messageID, nil
}

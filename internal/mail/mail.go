// Package mail delivers simulated phishing emails through AWS SES.
package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/thinkbeforeclick/platform/internal/config"
)

// Message is one outbound simulation email.
type Message struct {
	To          string
	FromName    string
	Subject     string
	HTMLContent string
	TrackingID  string
	TemplateID  string
}

// Sender delivers simulation emails. Satisfied by *SESSender and by the
// in-memory fake the simulation tests use.
type Sender interface {
	Send(ctx context.Context, msg *Message) (messageID string, err error)
}

// SESSender sends emails via AWS SES using the SDK v2.
type SESSender struct {
	client *sesv2.Client
	cfg    appconfig.MailConfig
}

// NewSESSender creates an SES sender. Static credentials win when
// configured; otherwise the default chain (instance/task role) is used.
func NewSESSender(ctx context.Context, cfg appconfig.MailConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}

	return &SESSender{
		client: sesv2.NewFromConfig(awsCfg),
		cfg:    cfg,
	}, nil
}

// NewSESSenderWithClient wraps an existing SES client.
func NewSESSenderWithClient(client *sesv2.Client, cfg appconfig.MailConfig) *SESSender {
	return &SESSender{client: client, cfg: cfg}
}

// Send delivers a single email through AWS SES and returns the SES
// message id.
func (s *SESSender) Send(ctx context.Context, msg *Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	from := s.cfg.SenderEmail
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, s.cfg.SenderEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTMLContent), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("tracking_id"), Value: aws.String(msg.TrackingID)},
			{Name: aws.String("template_id"), Value: aws.String(msg.TemplateID)},
		},
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return "", fmt.Errorf("sending via SES: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

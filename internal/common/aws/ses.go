// internal/common/aws/ses.go
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const charset = "UTF-8"

var ErrNoRecipients = errors.New("email has no recipients")

// SESAPI is the subset of the SES client the mailer calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Email struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type SESClient struct {
	client SESAPI
	from   string
}

func NewSESClient(ctx context.Context, region, from string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESClient{client: ses.NewFromConfig(cfg), from: from}, nil
}

// NewSESClientWithAPI builds a mailer over an existing SES API value.
func NewSESClientWithAPI(api SESAPI, from string) *SESClient {
	return &SESClient{client: api, from: from}
}

// Send delivers one email and returns the SES message ID.
func (s *SESClient) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", ErrNoRecipients
	}

	body := &types.Body{Text: content(email.TextBody)}
	if email.HTMLBody != "" {
		body.Html = content(email.HTMLBody)
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &types.Destination{ToAddresses: email.To},
		Message: &types.Message{
			Subject: content(email.Subject),
			Body:    body,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send email: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

func content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String(charset)}
}

package clients

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sirupsen/logrus"
)

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// sesAPI is the slice of the SES client we use.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesSender struct {
	client sesAPI
}

// NewSESMailer builds the client once. Static keys are used when given,
// otherwise the default AWS credential chain applies.
func NewSESMailer(ctx context.Context, cfg SESConfig, from, to string, logger *logrus.Logger) (*AdminMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	logger.Infof("SES mailer configured for region %s, notifying %s", cfg.Region, to)
	return newAdminMailer(&sesSender{client: ses.NewFromConfig(awsCfg)}, from, to, logger), nil
}

func (s *sesSender) send(ctx context.Context, from, to string, msg EmailMessage) error {
	if to == "" {
		return fmt.Errorf("recipient email address is empty")
	}
	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.HTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.Text),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return err
	}
	return nil
}

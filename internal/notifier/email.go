package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/goplaynow/playdate-api/internal/models"
	"go.uber.org/zap"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailNotifier mails joined parents through Amazon SES when a playdate is
// cancelled. It is disabled when no sender address is configured.
type EmailNotifier struct {
	client    sesAPI
	fromEmail string
	fromName  string
	loc       *time.Location
	logger    *zap.Logger
}

func NewEmailNotifier(ctx context.Context, region, fromEmail, fromName string, loc *time.Location, logger *zap.Logger) (*EmailNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fromEmail == "" {
		logger.Info("email notifications disabled: SES_FROM_EMAIL not configured")
		return &EmailNotifier{logger: logger, loc: loc}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	logger.Info("email notifications enabled", zap.String("from", fromEmail), zap.String("region", region))

	return &EmailNotifier{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		loc:       loc,
		logger:    logger,
	}, nil
}

func (n *EmailNotifier) Enabled() bool {
	return n.client != nil && n.fromEmail != ""
}

// PlaydateJoined is not mailed; the chat announcement covers joins.
func (n *EmailNotifier) PlaydateJoined(context.Context, models.Playdate, models.ParentProfile, []models.Child) error {
	return nil
}

func (n *EmailNotifier) PlaydateCancelled(ctx context.Context, playdate models.Playdate, attendees []models.ParentProfile) error {
	if !n.Enabled() {
		return nil
	}

	loc := n.loc
	if loc == nil {
		loc = time.UTC
	}
	start := playdate.StartTime.In(loc)
	subject := fmt.Sprintf("Cancelled: %s", playdate.Title)

	var errs []error
	for _, a := range attendees {
		if a.Email == "" {
			continue
		}
		body := fmt.Sprintf(`Hi %s,

The playdate "%s" at %s on %s at %s has been cancelled by its organiser.

---
This is an automated email from GoPlayNow. Please do not reply.
`, parentName(a), playdate.Title, playdate.Location, start.Format("Monday, 2 January"), start.Format("15:04"))

		if err := n.send(ctx, a.Email, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *EmailNotifier) send(ctx context.Context, toEmail, subject, textBody string) error {
	fromAddress := n.fromEmail
	if n.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	if result.MessageId != nil {
		n.logger.Debug("cancellation email sent", zap.String("to", toEmail), zap.String("message_id", *result.MessageId))
	}
	return nil
}

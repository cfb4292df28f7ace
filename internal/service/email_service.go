package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends parent progress digests via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. With no from address
// configured the service is disabled and every send becomes a logged
// no-op.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendProgressDigest sends a parent the weekly progress summary for one
// learner
func (s *EmailService) SendProgressDigest(ctx context.Context, toEmail string, dashboard *DashboardOutput) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): progress digest to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s's Weekly Math Progress", dashboard.Learner.Name)
	htmlBody := renderDigestHTML(dashboard, s.appBaseURL)
	textBody := renderDigestText(dashboard, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// renderDigestText renders the plain-text digest body
func renderDigestText(d *DashboardOutput, appBaseURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nHere is %s's practice summary for the last 7 days.\n\n", d.Learner.Name)
	fmt.Fprintf(&b, "Questions attempted: %d\n", d.Overview.Attempts)
	fmt.Fprintf(&b, "Accuracy: %.0f%%\n", d.Overview.AccuracyPercent)
	fmt.Fprintf(&b, "Average hints per question: %.2f\n", d.Overview.AvgHintsUsed)
	fmt.Fprintf(&b, "Practice streak: %d day(s)\n", d.Overview.StreakDays)

	if len(d.TopicMastery) > 0 {
		b.WriteString("\nTopic mastery:\n")
		for _, topic := range d.TopicMastery {
			fmt.Fprintf(&b, "- %s: %.0f (%s)\n", topic.TopicTitle, topic.MasteryScore, topic.Proficiency)
		}
	}
	if len(d.Recommendations) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, rec := range d.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec.Text)
		}
	}

	fmt.Fprintf(&b, "\nSee the full dashboard: %s/parent\n\n---\nThis is an automated email from BrightPath. Please do not reply.\n", appBaseURL)
	return b.String()
}

// renderDigestHTML renders the HTML digest body
func renderDigestHTML(d *DashboardOutput, appBaseURL string) string {
	var topics strings.Builder
	for _, topic := range d.TopicMastery {
		fmt.Fprintf(&topics, "<li>%s: %.0f (%s)</li>\n", topic.TopicTitle, topic.MasteryScore, topic.Proficiency)
	}
	var recs strings.Builder
	for _, rec := range d.Recommendations {
		fmt.Fprintf(&recs, "<li>%s</li>\n", rec.Text)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s's Weekly Progress</h1>
		</div>
		<div class="content">
			<p>Here is the practice summary for the last 7 days:</p>
			<ul>
				<li>Questions attempted: %d</li>
				<li>Accuracy: %.0f%%</li>
				<li>Average hints per question: %.2f</li>
				<li>Practice streak: %d day(s)</li>
			</ul>
			<p><strong>Topic mastery</strong></p>
			<ul>%s</ul>
			<p><strong>Suggestions</strong></p>
			<ul>%s</ul>
			<p style="text-align: center;">
				<a href="%s/parent" class="button">View Dashboard</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from BrightPath. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, d.Learner.Name, d.Overview.Attempts, d.Overview.AccuracyPercent, d.Overview.AvgHintsUsed,
		d.Overview.StreakDays, topics.String(), recs.String(), appBaseURL)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

// Package alerts sends release notifications after a video is published
package alerts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"

	"github.com/antoniolg/agent-kit/internal/utils"
)

// Notifier delivers a short release message
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// SNSNotifier publishes to an SNS topic
type SNSNotifier struct {
	client   snsiface.SNSAPI
	topicARN string
}

// NewSNSNotifier builds a notifier from the shared AWS config.
// An empty topic yields a Nop notifier.
func NewSNSNotifier(topicARN, region string) (Notifier, error) {
	if topicARN == "" {
		return Nop{}, nil
	}

	opts := session.Options{SharedConfigState: session.SharedConfigEnable}
	if region != "" {
		opts.Config = aws.Config{Region: aws.String(region)}
	}
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewSNSNotifierWithClient(sns.New(sess), topicARN), nil
}

// NewSNSNotifierWithClient wraps an existing SNS client
func NewSNSNotifierWithClient(client snsiface.SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

// Notify implements Notifier
func (n *SNSNotifier) Notify(ctx context.Context, subject, message string) error {
	out, err := n.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", n.topicARN, err)
	}
	utils.LogVerbose("Sent release alert (message %s)", aws.StringValue(out.MessageId))
	return nil
}

// Nop discards notifications
type Nop struct{}

// Notify implements Notifier
func (Nop) Notify(ctx context.Context, subject, message string) error { return nil }

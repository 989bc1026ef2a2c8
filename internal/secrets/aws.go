package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSProvider reads a JSON secret from AWS Secrets Manager.
type AWSProvider struct {
	client   secretsManagerAPI
	secretID string
}

// NewAWSProvider uses the default AWS credential chain.
func NewAWSProvider(ctx context.Context, secretID, region string) (*AWSProvider, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSProvider{client: secretsmanager.NewFromConfig(awsConfig), secretID: secretID}, nil
}

func (p *AWSProvider) Load(ctx context.Context) (Secrets, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		return Secrets{}, fmt.Errorf("get secret %s: %w", p.secretID, err)
	}

	if out.SecretString != nil {
		return decode([]byte(*out.SecretString))
	}
	return decode(out.SecretBinary)
}

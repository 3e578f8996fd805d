package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	errUtils "github.com/serverless/sfauth/errors"
	awsCloud "github.com/serverless/sfauth/pkg/auth/cloud/aws"
	log "github.com/serverless/sfauth/pkg/logger"
)

// CallerIdentity holds the information returned by AWS STS GetCallerIdentity.
type CallerIdentity struct {
	Account string
	Arn     string
	UserID  string
	Region  string // The AWS region the call was made in.
}

// Credentials are the temporary credentials to verify.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// Getter provides an interface for retrieving AWS caller identity information.
//
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=$GOFILE -destination=mock_getter_test.go -package=identity
type Getter interface {
	// GetCallerIdentity returns the account, ARN and user ID the credentials belong to.
	GetCallerIdentity(ctx context.Context, creds Credentials) (*CallerIdentity, error)
}

// ClientFactory builds an STS client for the given credentials.
type ClientFactory func(ctx context.Context, creds Credentials) (awsCloud.STSAPI, error)

// STSGetter is the production Getter.
type STSGetter struct {
	newClient ClientFactory
}

// NewGetter returns a Getter backed by STS. A nil factory uses the SDK default.
func NewGetter(factory ClientFactory) *STSGetter {
	if factory == nil {
		factory = defaultClient
	}
	return &STSGetter{newClient: factory}
}

func defaultClient(ctx context.Context, creds Credentials) (awsCloud.STSAPI, error) {
	cfg, err := awsCloud.LoadSDKConfig(ctx, awsCloud.SDKOptions{
		Region:      creds.Region,
		Credentials: credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		Isolated:    true,
	})
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(cfg), nil
}

// GetCallerIdentity implements Getter.
func (g *STSGetter) GetCallerIdentity(ctx context.Context, creds Credentials) (*CallerIdentity, error) {
	log.Debug("Getting AWS caller identity", "access_key_id", log.MaskSecret(creds.AccessKeyID), "region", creds.Region)

	client, err := g.newClient(ctx, creds)
	if err != nil {
		return nil, err
	}

	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUtils.ErrCredentialVerification, err)
	}

	identity := &CallerIdentity{
		Account: aws.ToString(output.Account),
		Arn:     aws.ToString(output.Arn),
		UserID:  aws.ToString(output.UserId),
		Region:  creds.Region,
	}

	log.Debug("Retrieved AWS caller identity",
		"account", identity.Account,
		"arn", identity.Arn,
		"region", identity.Region,
	)
	return identity, nil
}

// VerifyConsoleSession checks that a cached console login session is accepted by AWS
// and belongs to the account recorded in the cache.
func VerifyConsoleSession(ctx context.Context, g Getter, cache *awsCloud.ConsoleTokenCache, region string) (*CallerIdentity, error) {
	identity, err := g.GetCallerIdentity(ctx, Credentials{
		AccessKeyID:     cache.AccessToken.AccessKeyID,
		SecretAccessKey: cache.AccessToken.SecretAccessKey,
		SessionToken:    cache.AccessToken.SessionToken,
		Region:          region,
	})
	if err != nil {
		return nil, err
	}
	if cache.AccessToken.AccountID != "" && identity.Account != cache.AccessToken.AccountID {
		return nil, fmt.Errorf("%w: credentials belong to account %s, expected %s",
			errUtils.ErrCredentialVerification, identity.Account, cache.AccessToken.AccountID)
	}
	return identity, nil
}

package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

// LicenseKeyParameter is the SSM parameter an account can use to provision a license key.
const LicenseKeyParameter = "/serverless-framework/license-key"

// SSMClientFactory creates an SSM client for a region and profile.
type SSMClientFactory func(ctx context.Context, region, profile string) (SSMAPI, error)

// LicenseKeyFetcher reads the license key from SSM Parameter Store.
type LicenseKeyFetcher struct {
	newClient SSMClientFactory
}

// NewLicenseKeyFetcher returns a fetcher. A nil factory uses the SDK default credential chain.
func NewLicenseKeyFetcher(factory SSMClientFactory) *LicenseKeyFetcher {
	if factory == nil {
		factory = defaultSSMClient
	}
	return &LicenseKeyFetcher{newClient: factory}
}

func defaultSSMClient(ctx context.Context, region, profile string) (SSMAPI, error) {
	cfg, err := LoadSDKConfig(ctx, SDKOptions{Region: region, Profile: profile})
	if err != nil {
		return nil, err
	}
	return ssm.NewFromConfig(cfg), nil
}

// Fetch returns the decrypted license key. Region defaults to us-east-1.
func (f *LicenseKeyFetcher) Fetch(ctx context.Context, region, profile string) (string, error) {
	if region == "" {
		region = DefaultRegion
	}

	client, err := f.newClient(ctx, region, profile)
	if err != nil {
		return "", err
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(LicenseKeyParameter),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", errUtils.ErrSSMParameterNotFound, LicenseKeyParameter)
		}
		return "", fmt.Errorf("%w: %s: %s", errUtils.ErrSSMParameterNotFound, LicenseKeyParameter, apiErrorMessage(err))
	}
	if out.Parameter == nil || strings.TrimSpace(aws.ToString(out.Parameter.Value)) == "" {
		return "", fmt.Errorf("%w: %s is empty", errUtils.ErrSSMParameterNotFound, LicenseKeyParameter)
	}

	key := strings.TrimSpace(aws.ToString(out.Parameter.Value))
	log.Debug("Fetched license key from SSM", "region", region, "key", log.MaskSecret(key))
	return key, nil
}

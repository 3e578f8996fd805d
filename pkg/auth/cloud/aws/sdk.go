package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	errUtils "github.com/serverless/sfauth/errors"
	log "github.com/serverless/sfauth/pkg/logger"
)

// EndpointURLEnv overrides the endpoint of every SDK client created here.
const EndpointURLEnv = "SFAUTH_AWS_ENDPOINT_URL"

// credentialEnvVars would make the SDK sign requests that must stay anonymous
// or fail to load because of a profile unrelated to the login.
var credentialEnvVars = []string{
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"AWS_SESSION_TOKEN",
	"AWS_PROFILE",
}

// SDKOptions selects how an SDK configuration is loaded.
type SDKOptions struct {
	Region  string
	Profile string
	// Credentials replaces the default credential chain when set.
	Credentials aws.CredentialsProvider
	// Isolated ignores credential environment variables and shared profiles.
	Isolated bool
}

// withIsolatedAWSEnv clears credential variables while fn runs and restores them afterwards.
func withIsolatedAWSEnv(fn func() error) error {
	original := make(map[string]string)
	for _, key := range credentialEnvVars {
		if value, ok := os.LookupEnv(key); ok {
			original[key] = value
			os.Unsetenv(key)
		}
	}
	if len(original) > 0 {
		log.Debug("Ignoring AWS credential environment variables", "count", len(original))
	}

	err := fn()

	for key, value := range original {
		os.Setenv(key, value)
	}
	return err
}

// LoadSDKConfig loads an aws.Config for the given region, profile and credentials.
func LoadSDKConfig(ctx context.Context, opts SDKOptions) (aws.Config, error) {
	var optFns []func(*config.LoadOptions) error
	if opts.Region != "" {
		optFns = append(optFns, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" && !opts.Isolated {
		optFns = append(optFns, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Credentials != nil {
		optFns = append(optFns, config.WithCredentialsProvider(opts.Credentials))
	}
	if endpoint := os.Getenv(EndpointURLEnv); endpoint != "" {
		optFns = append(optFns, config.WithBaseEndpoint(endpoint))
	}

	var cfg aws.Config
	load := func() error {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx, optFns...)
		return err
	}

	var err error
	if opts.Isolated {
		err = withIsolatedAWSEnv(load)
	} else {
		err = load()
	}
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: %w", errUtils.ErrLoadAWSConfig, err)
	}
	return cfg, nil
}

package aws

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithIsolatedAWSEnv(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_PROFILE", "ops")
	t.Setenv("AWS_REGION", "eu-west-1")

	boom := errors.New("boom")
	err := withIsolatedAWSEnv(func() error {
		_, ok := os.LookupEnv("AWS_ACCESS_KEY_ID")
		assert.False(t, ok)
		_, ok = os.LookupEnv("AWS_PROFILE")
		assert.False(t, ok)
		assert.Equal(t, "eu-west-1", os.Getenv("AWS_REGION"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "AKIAEXAMPLE", os.Getenv("AWS_ACCESS_KEY_ID"))
	assert.Equal(t, "ops", os.Getenv("AWS_PROFILE"))
}

func TestLoadSDKConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AWS_CONFIG_FILE", home+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", home+"/credentials")
	t.Setenv(EndpointURLEnv, "http://localhost:4566")

	cfg, err := LoadSDKConfig(context.Background(), SDKOptions{
		Region:      "ap-south-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIA", "secret", "token"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(cfg.BaseEndpoint))

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
}

func TestLoadSDKConfig_IsolatedIgnoresMissingProfile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AWS_CONFIG_FILE", home+"/config")
	t.Setenv("AWS_PROFILE", "does-not-exist")

	cfg, err := LoadSDKConfig(context.Background(), SDKOptions{Region: "us-east-1", Profile: "does-not-exist", Isolated: true})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "does-not-exist", os.Getenv("AWS_PROFILE"))
}

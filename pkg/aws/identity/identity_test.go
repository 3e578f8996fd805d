package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errUtils "github.com/serverless/sfauth/errors"
	awsCloud "github.com/serverless/sfauth/pkg/auth/cloud/aws"
)

type fakeSTS struct {
	output *sts.GetCallerIdentityOutput
	err    error
	calls  int
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.calls++
	return f.output, f.err
}

func TestSTSGetter_GetCallerIdentity(t *testing.T) {
	fake := &fakeSTS{output: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:sts::123456789012:assumed-role/Admin/alice"),
		UserId:  aws.String("AROAEXAMPLE:alice"),
	}}

	var got Credentials
	g := NewGetter(func(_ context.Context, creds Credentials) (awsCloud.STSAPI, error) {
		got = creds
		return fake, nil
	})

	identity, err := g.GetCallerIdentity(context.Background(), Credentials{
		AccessKeyID:     "ASIAEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		Region:          "eu-west-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "123456789012", identity.Account)
	assert.Equal(t, "arn:aws:sts::123456789012:assumed-role/Admin/alice", identity.Arn)
	assert.Equal(t, "AROAEXAMPLE:alice", identity.UserID)
	assert.Equal(t, "eu-west-1", identity.Region)
	assert.Equal(t, "ASIAEXAMPLE", got.AccessKeyID)
	assert.Equal(t, 1, fake.calls)
}

func TestSTSGetter_Error(t *testing.T) {
	g := NewGetter(func(context.Context, Credentials) (awsCloud.STSAPI, error) {
		return &fakeSTS{err: errors.New("ExpiredToken")}, nil
	})

	_, err := g.GetCallerIdentity(context.Background(), Credentials{Region: "us-east-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrCredentialVerification)
}

func TestSTSGetter_FactoryError(t *testing.T) {
	boom := errors.New("no config")
	g := NewGetter(func(context.Context, Credentials) (awsCloud.STSAPI, error) {
		return nil, boom
	})

	_, err := g.GetCallerIdentity(context.Background(), Credentials{})
	assert.ErrorIs(t, err, boom)
}

func TestVerifyConsoleSession(t *testing.T) {
	cache := &awsCloud.ConsoleTokenCache{AccessToken: awsCloud.ConsoleAccessToken{
		AccessKeyID:     "ASIAEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		AccountID:       "123456789012",
	}}

	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{name: "matching account", account: "123456789012"},
		{name: "different account", account: "210987654321", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			getter := NewMockGetter(ctrl)
			getter.EXPECT().
				GetCallerIdentity(gomock.Any(), Credentials{
					AccessKeyID:     "ASIAEXAMPLE",
					SecretAccessKey: "secret",
					SessionToken:    "token",
					Region:          "us-east-1",
				}).
				Return(&CallerIdentity{Account: tt.account, Region: "us-east-1"}, nil)

			identity, err := VerifyConsoleSession(context.Background(), getter, cache, "us-east-1")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errUtils.ErrCredentialVerification)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.account, identity.Account)
		})
	}
}

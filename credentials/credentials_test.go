// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/z5labs/multilang/factory"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	testCases := []struct {
		name     string
		typeName string
		expected aws.CredentialsProvider
	}{
		{
			name:     "fully qualified default provider",
			typeName: Prefix + Default,
			expected: DefaultProvider{},
		},
		{
			name:     "short default provider",
			typeName: Default,
			expected: DefaultProvider{},
		},
		{
			name:     "profile provider with profile argument",
			typeName: Prefix + Profile + "|dev",
			expected: DefaultProvider{Profile: "dev"},
		},
		{
			name:     "environment provider",
			typeName: Environment,
			expected: EnvironmentProvider{},
		},
		{
			name:     "anonymous provider",
			typeName: Anonymous,
			expected: aws.AnonymousCredentials{},
		},
		{
			name:     "comma separated chain",
			typeName: Environment + ", " + Prefix + Default,
			expected: Chain{EnvironmentProvider{}, DefaultProvider{}},
		},
	}

	instantiate := Instantiator(Registry())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := instantiate(tc.typeName)
			require.NoError(t, err)
			require.Equal(t, tc.expected, p)
		})
	}
}

func TestInstantiator(t *testing.T) {
	t.Run("will return a ResolutionError", func(t *testing.T) {
		t.Run("if the provider is unknown", func(t *testing.T) {
			_, err := Instantiator(Registry())("com.example.Unknown")

			var rerr factory.ResolutionError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			if !assert.ErrorIs(t, err, factory.ErrUnknownImplementation) {
				return
			}
		})

		t.Run("if one provider of a chain is unknown", func(t *testing.T) {
			_, err := Instantiator(Registry())(Default + ",Missing")

			var rerr factory.ResolutionError
			if !assert.ErrorAs(t, err, &rerr) {
				return
			}
			if !assert.Equal(t, "Missing", rerr.Name) {
				return
			}
		})

		t.Run("if the profile provider has no profile", func(t *testing.T) {
			_, err := Instantiator(Registry())(Profile)
			if !assert.ErrorIs(t, err, ErrMissingProfile) {
				return
			}
		})
	})
}

func TestEnvironmentProvider_Retrieve(t *testing.T) {
	t.Run("will return credentials", func(t *testing.T) {
		t.Run("if the access key and secret are set", func(t *testing.T) {
			t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
			t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
			t.Setenv("AWS_SESSION_TOKEN", "TOKEN")

			creds, err := EnvironmentProvider{}.Retrieve(context.Background())
			if !assert.Nil(t, err) {
				return
			}
			if !assert.Equal(t, "AKID", creds.AccessKeyID) {
				return
			}
			if !assert.Equal(t, "SECRET", creds.SecretAccessKey) {
				return
			}
			if !assert.Equal(t, "TOKEN", creds.SessionToken) {
				return
			}
			if !assert.Equal(t, Environment, creds.Source) {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the environment has no keys", func(t *testing.T) {
			t.Setenv("AWS_ACCESS_KEY_ID", "")
			t.Setenv("AWS_ACCESS_KEY", "")
			t.Setenv("AWS_SECRET_ACCESS_KEY", "")
			t.Setenv("AWS_SECRET_KEY", "")

			_, err := EnvironmentProvider{}.Retrieve(context.Background())
			if !assert.Error(t, err) {
				return
			}
		})
	})
}

type providerFunc func(context.Context) (aws.Credentials, error)

func (f providerFunc) Retrieve(ctx context.Context) (aws.Credentials, error) {
	return f(ctx)
}

func TestChain_Retrieve(t *testing.T) {
	t.Run("will return the first successful credentials", func(t *testing.T) {
		failing := providerFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{}, errors.New("nope")
		})
		working := providerFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET"}, nil
		})

		creds, err := Chain{failing, working}.Retrieve(context.Background())
		require.NoError(t, err)
		require.Equal(t, "AKID", creds.AccessKeyID)
	})

	t.Run("will join every error if all providers fail", func(t *testing.T) {
		errA := errors.New("a")
		errB := errors.New("b")
		chain := Chain{
			providerFunc(func(ctx context.Context) (aws.Credentials, error) { return aws.Credentials{}, errA }),
			providerFunc(func(ctx context.Context) (aws.Credentials, error) { return aws.Credentials{}, errB }),
		}

		_, err := chain.Retrieve(context.Background())
		require.ErrorIs(t, err, errA)
		require.ErrorIs(t, err, errB)
	})

	t.Run("will return ErrNoCredentials if the chain is empty", func(t *testing.T) {
		_, err := Chain{}.Retrieve(context.Background())
		require.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestName(t *testing.T) {
	t.Run("will round trip through the registry", func(t *testing.T) {
		instantiate := Instantiator(Registry())
		for _, typeName := range []string{
			Default,
			Profile + "|dev",
			Environment,
			Anonymous,
			Environment + "," + Default,
		} {
			p, err := instantiate(typeName)
			require.NoError(t, err)
			require.Equal(t, typeName, Name(p))
		}
	})

	t.Run("will fall back to the go type", func(t *testing.T) {
		p := providerFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{}, nil
		})
		require.Equal(t, "credentials.providerFunc", Name(p))
	})
}

func TestClone(t *testing.T) {
	t.Run("will copy chains", func(t *testing.T) {
		orig := Chain{DefaultProvider{}, Chain{EnvironmentProvider{}}}

		clone := Clone(orig).(Chain)
		require.Equal(t, orig, clone)

		clone[0] = aws.AnonymousCredentials{}
		clone[1].(Chain)[0] = aws.AnonymousCredentials{}
		require.Equal(t, Chain{DefaultProvider{}, Chain{EnvironmentProvider{}}}, orig)
	})

	t.Run("will return other providers as is", func(t *testing.T) {
		require.Equal(t, DefaultProvider{Profile: "dev"}, Clone(DefaultProvider{Profile: "dev"}))
		require.Nil(t, Clone(nil))
	})
}

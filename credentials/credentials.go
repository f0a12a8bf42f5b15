// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package credentials provides the credentials provider implementations
// a settings file can name, e.g.
//
//	kinesisCredentialsProvider = DefaultCredentialsProvider
//	dynamoDBCredentialsProvider = ProfileCredentialsProvider|dynamo
//	cloudWatchCredentialsProvider = EnvironmentVariableCredentialsProvider,DefaultCredentialsProvider
//
// None of the providers touch the network or the filesystem until
// Retrieve is called. Wrap them in an aws.CredentialsCache before
// handing them to SDK clients.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/z5labs/multilang/factory"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Prefix is the package the daemon's implementation names have
// historically been qualified with. Every provider is registered
// both with and without it.
const Prefix = "software.amazon.awssdk.auth.credentials."

// Registered implementation names.
const (
	Default     = "DefaultCredentialsProvider"
	Environment = "EnvironmentVariableCredentialsProvider"
	Profile     = "ProfileCredentialsProvider"
	Anonymous   = "AnonymousCredentialsProvider"
)

var (
	// ErrNoCredentials is returned when the default chain resolves no provider.
	ErrNoCredentials = errors.New("no credentials provider resolved")

	// ErrMissingProfile is returned when a profile provider is named without a profile.
	ErrMissingProfile = errors.New("profile name is required")
)

// Registry returns a factory.Registry populated with every provider
// in this package.
func Registry() *factory.Registry[aws.CredentialsProvider] {
	r := factory.New[aws.CredentialsProvider]()
	register(r, Default, newDefault)
	register(r, Environment, newEnvironment)
	register(r, Profile, newProfile)
	register(r, Anonymous, newAnonymous)
	return r
}

func register(r *factory.Registry[aws.CredentialsProvider], name string, ctor factory.Constructor[aws.CredentialsProvider]) {
	r.Register(ctor, Prefix+name, name)
}

// Instantiator returns a func which resolves a provider name
// using r. A comma separated list of names builds a Chain.
func Instantiator(r *factory.Registry[aws.CredentialsProvider]) func(string) (aws.CredentialsProvider, error) {
	return func(typeName string) (aws.CredentialsProvider, error) {
		names := strings.Split(typeName, ",")
		if len(names) == 1 {
			return r.Instantiate(typeName)
		}

		chain := make(Chain, 0, len(names))
		for _, name := range names {
			p, err := r.Instantiate(name)
			if err != nil {
				return nil, err
			}
			chain = append(chain, p)
		}
		return chain, nil
	}
}

func newDefault(args ...string) (aws.CredentialsProvider, error) {
	return DefaultProvider{}, nil
}

func newProfile(args ...string) (aws.CredentialsProvider, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, ErrMissingProfile
	}
	return DefaultProvider{Profile: args[0]}, nil
}

func newEnvironment(args ...string) (aws.CredentialsProvider, error) {
	return EnvironmentProvider{}, nil
}

func newAnonymous(args ...string) (aws.CredentialsProvider, error) {
	return aws.AnonymousCredentials{}, nil
}

// DefaultProvider resolves credentials through the SDK's default
// chain: environment, shared config and credentials files, web
// identity, ECS and EC2 instance metadata.
type DefaultProvider struct {
	// Profile selects a shared config profile. Empty means the
	// SDK's own default resolution.
	Profile string
}

// Retrieve implements the aws.CredentialsProvider interface.
func (p DefaultProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if p.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(p.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Credentials{}, err
	}
	if cfg.Credentials == nil {
		return aws.Credentials{}, ErrNoCredentials
	}
	return cfg.Credentials.Retrieve(ctx)
}

// EnvironmentProvider reads credentials from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN each time Retrieve
// is called.
type EnvironmentProvider struct{}

// Retrieve implements the aws.CredentialsProvider interface.
func (EnvironmentProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	id := firstEnv("AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY")
	secret := firstEnv("AWS_SECRET_ACCESS_KEY", "AWS_SECRET_KEY")
	token := os.Getenv("AWS_SESSION_TOKEN")

	p := credentials.NewStaticCredentialsProvider(id, secret, token)
	creds, err := p.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, err
	}
	creds.Source = Environment
	return creds, nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Chain tries each provider in order and returns the first
// credentials successfully retrieved.
type Chain []aws.CredentialsProvider

// Retrieve implements the aws.CredentialsProvider interface.
func (c Chain) Retrieve(ctx context.Context) (aws.Credentials, error) {
	errs := make([]error, 0, len(c))
	for _, p := range c {
		creds, err := p.Retrieve(ctx)
		if err == nil {
			return creds, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return aws.Credentials{}, ErrNoCredentials
	}
	return aws.Credentials{}, errors.Join(errs...)
}

// Clone returns p with every Chain in it copied, so changing the
// copy's providers leaves p unchanged.
func Clone(p aws.CredentialsProvider) aws.CredentialsProvider {
	c, ok := p.(Chain)
	if !ok || c == nil {
		return p
	}
	out := make(Chain, len(c))
	for i, cp := range c {
		out[i] = Clone(cp)
	}
	return out
}

// Name returns the implementation name p would be configured
// with, e.g. "ProfileCredentialsProvider|dev". Providers not from
// this package are named by their Go type.
func Name(p aws.CredentialsProvider) string {
	switch x := p.(type) {
	case DefaultProvider:
		if x.Profile != "" {
			return Profile + "|" + x.Profile
		}
		return Default
	case EnvironmentProvider:
		return Environment
	case aws.AnonymousCredentials:
		return Anonymous
	case Chain:
		names := make([]string, len(x))
		for i, cp := range x {
			names[i] = Name(cp)
		}
		return strings.Join(names, ",")
	default:
		return fmt.Sprintf("%T", p)
	}
}

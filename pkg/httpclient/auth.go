package httpclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Auth types.
const (
	AuthNone     = ""
	AuthBearer   = "bearer"
	AuthOAuth2   = "oauth2"
	AuthAWSSigV4 = "aws_sigv4"
)

// AuthConfig selects how outbound requests are authenticated.
type AuthConfig struct {
	// Type is one of AuthNone, AuthBearer, AuthOAuth2 or AuthAWSSigV4.
	Type string

	// Token is the static bearer token (bearer).
	Token string

	// ClientID, ClientSecret, TokenURL and Scopes configure the OAuth2
	// client credentials flow (oauth2). Tokens are fetched on first use and
	// refreshed before they expire.
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// Service and Region are the SigV4 signing scope (aws_sigv4), e.g.
	// "execute-api" and "eu-west-1".
	Service string
	Region  string

	// Credentials overrides the AWS default credential chain (aws_sigv4).
	Credentials aws.CredentialsProvider
}

// Validate checks that the fields Type needs are present.
func (a *AuthConfig) Validate() error {
	switch a.Type {
	case AuthNone:
		return nil
	case AuthBearer:
		if a.Token == "" {
			return errors.New("auth: token is required for bearer auth")
		}
	case AuthOAuth2:
		if a.ClientID == "" || a.ClientSecret == "" {
			return errors.New("auth: client_id and client_secret are required for oauth2 auth")
		}
		if !strings.HasPrefix(a.TokenURL, "https://") && !strings.HasPrefix(a.TokenURL, "http://") {
			return fmt.Errorf("auth: token_url must start with http:// or https://, got %q", a.TokenURL)
		}
	case AuthAWSSigV4:
		if a.Service == "" || a.Region == "" {
			return errors.New("auth: service and region are required for aws_sigv4 auth")
		}
	default:
		return fmt.Errorf("auth: unknown type %q (want bearer, oauth2 or aws_sigv4)", a.Type)
	}
	return nil
}

// newAuthTransport wraps base so that every request is authenticated per the
// settings in a. base is returned unchanged for AuthNone.
func newAuthTransport(base http.RoundTripper, a AuthConfig, timeout time.Duration) (http.RoundTripper, error) {
	switch a.Type {
	case AuthBearer:
		return &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: a.Token, TokenType: "Bearer"}),
			Base:   base,
		}, nil

	case AuthOAuth2:
		cc := &clientcredentials.Config{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			TokenURL:     a.TokenURL,
			Scopes:       a.Scopes,
		}
		// Token requests share the pooled transport and TLS settings.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: base, Timeout: timeout})
		return &oauth2.Transport{Source: cc.TokenSource(ctx), Base: base}, nil

	case AuthAWSSigV4:
		creds := a.Credentials
		if creds == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(a.Region))
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
			}
			creds = awsCfg.Credentials
		}
		return &sigV4Transport{
			base:        base,
			signer:      v4.NewSigner(),
			credentials: aws.NewCredentialsCache(creds),
			service:     a.Service,
			region:      a.Region,
		}, nil
	}
	return base, nil
}

// sigV4Transport signs each request with AWS Signature Version 4.
type sigV4Transport struct {
	base        http.RoundTripper
	signer      *v4.Signer
	credentials aws.CredentialsProvider
	service     string
	region      string
}

// RoundTrip implements http.RoundTripper.
func (t *sigV4Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	signed := req.Clone(ctx)

	var payload []byte
	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body for signing: %w", err)
		}
		payload = data
		signed.Body = io.NopCloser(bytes.NewReader(data))
		signed.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}
	sum := sha256.Sum256(payload)

	creds, err := t.credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve AWS credentials: %w", err)
	}
	if err := t.signer.SignHTTP(ctx, creds, signed, hex.EncodeToString(sum[:]), t.service, t.region, time.Now()); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	return t.base.RoundTrip(signed)
}

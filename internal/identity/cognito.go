package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
)

// Store abstracts the identity provider: create or delete one principal
// (credential-holding account). Principal IDs are opaque, provider-assigned
// strings.
type Store interface {
	CreatePrincipal(ctx context.Context, email, password string, metadata map[string]string) (string, error)
	DeletePrincipal(ctx context.Context, principalID string) error
}

// CognitoStore implements Store against an AWS Cognito user pool. Calls are
// guarded by a circuit breaker so a degraded pool fails fast instead of
// stalling lifecycle flows.
type CognitoStore struct {
	api        cognitoidentityprovideriface.CognitoIdentityProviderAPI
	userPoolID string
	breaker    *breaker
}

// NewCognitoStore creates a CognitoStore for the given region and user pool.
func NewCognitoStore(region, userPoolID string) (*CognitoStore, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}
	return &CognitoStore{
		api:        cognitoidentityprovider.New(sess),
		userPoolID: userPoolID,
		breaker:    newBreaker(5, 30*time.Second),
	}, nil
}

// CreatePrincipal creates a pre-confirmed user in the pool with a permanent
// password and returns the provider-assigned sub as the principal ID. The
// invitation email is suppressed; the application sends its own welcome.
func (s *CognitoStore) CreatePrincipal(ctx context.Context, email, password string, metadata map[string]string) (string, error) {
	attributes := []*cognitoidentityprovider.AttributeType{
		{Name: aws.String("email"), Value: aws.String(email)},
		{Name: aws.String("email_verified"), Value: aws.String("true")},
	}
	for name, value := range map[string]string{
		"given_name":  metadata["given_name"],
		"family_name": metadata["family_name"],
	} {
		if value != "" {
			attributes = append(attributes, &cognitoidentityprovider.AttributeType{
				Name: aws.String(name), Value: aws.String(value),
			})
		}
	}

	var created *cognitoidentityprovider.AdminCreateUserOutput
	err := s.breaker.call(func() error {
		var apiErr error
		created, apiErr = s.api.AdminCreateUserWithContext(ctx, &cognitoidentityprovider.AdminCreateUserInput{
			UserPoolId:     aws.String(s.userPoolID),
			Username:       aws.String(email),
			MessageAction:  aws.String(cognitoidentityprovider.MessageActionTypeSuppress),
			UserAttributes: attributes,
		})
		return apiErr
	})
	if err != nil {
		return "", err
	}

	err = s.breaker.call(func() error {
		_, apiErr := s.api.AdminSetUserPasswordWithContext(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
			UserPoolId: aws.String(s.userPoolID),
			Username:   aws.String(email),
			Password:   aws.String(password),
			Permanent:  aws.Bool(true),
		})
		return apiErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	return principalIDFromUser(created.User), nil
}

// DeletePrincipal removes the principal from the pool.
func (s *CognitoStore) DeletePrincipal(ctx context.Context, principalID string) error {
	return s.breaker.call(func() error {
		_, err := s.api.AdminDeleteUserWithContext(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
			UserPoolId: aws.String(s.userPoolID),
			Username:   aws.String(principalID),
		})
		return err
	})
}

func principalIDFromUser(user *cognitoidentityprovider.UserType) string {
	if user == nil {
		return ""
	}
	for _, attr := range user.Attributes {
		if aws.StringValue(attr.Name) == "sub" {
			return aws.StringValue(attr.Value)
		}
	}
	return aws.StringValue(user.Username)
}

package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider/cognitoidentityprovideriface"
	"github.com/stretchr/testify/assert"
)

type stubCognitoAPI struct {
	cognitoidentityprovideriface.CognitoIdentityProviderAPI

	createInput *cognitoidentityprovider.AdminCreateUserInput
	createErr   error
	passwordErr error
	deleteInput *cognitoidentityprovider.AdminDeleteUserInput
	deleteErr   error
}

func (s *stubCognitoAPI) AdminCreateUserWithContext(ctx aws.Context, input *cognitoidentityprovider.AdminCreateUserInput, opts ...request.Option) (*cognitoidentityprovider.AdminCreateUserOutput, error) {
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &cognitoidentityprovider.AdminCreateUserOutput{
		User: &cognitoidentityprovider.UserType{
			Username: input.Username,
			Attributes: []*cognitoidentityprovider.AttributeType{
				{Name: aws.String("sub"), Value: aws.String("sub-123")},
			},
		},
	}, nil
}

func (s *stubCognitoAPI) AdminSetUserPasswordWithContext(ctx aws.Context, input *cognitoidentityprovider.AdminSetUserPasswordInput, opts ...request.Option) (*cognitoidentityprovider.AdminSetUserPasswordOutput, error) {
	if s.passwordErr != nil {
		return nil, s.passwordErr
	}
	return &cognitoidentityprovider.AdminSetUserPasswordOutput{}, nil
}

func (s *stubCognitoAPI) AdminDeleteUserWithContext(ctx aws.Context, input *cognitoidentityprovider.AdminDeleteUserInput, opts ...request.Option) (*cognitoidentityprovider.AdminDeleteUserOutput, error) {
	s.deleteInput = input
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &cognitoidentityprovider.AdminDeleteUserOutput{}, nil
}

func newTestStore(api cognitoidentityprovideriface.CognitoIdentityProviderAPI) *CognitoStore {
	return &CognitoStore{
		api:        api,
		userPoolID: "pool-1",
		breaker:    newBreaker(5, 30*time.Second),
	}
}

func TestCreatePrincipalReturnsSub(t *testing.T) {
	api := &stubCognitoAPI{}
	s := newTestStore(api)

	id, err := s.CreatePrincipal(context.Background(), "a@x.tt", "secret", map[string]string{
		"given_name":  "A",
		"family_name": "B",
	})
	assert.NoError(t, err)
	assert.Equal(t, "sub-123", id)

	assert.Equal(t, "pool-1", aws.StringValue(api.createInput.UserPoolId))
	assert.Equal(t, cognitoidentityprovider.MessageActionTypeSuppress, aws.StringValue(api.createInput.MessageAction))
	attrs := map[string]string{}
	for _, a := range api.createInput.UserAttributes {
		attrs[aws.StringValue(a.Name)] = aws.StringValue(a.Value)
	}
	assert.Equal(t, "a@x.tt", attrs["email"])
	assert.Equal(t, "true", attrs["email_verified"])
	assert.Equal(t, "A", attrs["given_name"])
	assert.Equal(t, "B", attrs["family_name"])
}

func TestCreatePrincipalPropagatesProviderError(t *testing.T) {
	api := &stubCognitoAPI{createErr: errors.New("UsernameExistsException")}
	s := newTestStore(api)

	_, err := s.CreatePrincipal(context.Background(), "a@x.tt", "secret", nil)
	assert.ErrorContains(t, err, "UsernameExistsException")
}

func TestDeletePrincipal(t *testing.T) {
	api := &stubCognitoAPI{}
	s := newTestStore(api)

	assert.NoError(t, s.DeletePrincipal(context.Background(), "sub-123"))
	assert.Equal(t, "sub-123", aws.StringValue(api.deleteInput.Username))

	api.deleteErr = errors.New("UserNotFoundException")
	assert.Error(t, s.DeletePrincipal(context.Background(), "sub-404"))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	api := &stubCognitoAPI{deleteErr: errors.New("throttled")}
	s := newTestStore(api)
	s.breaker = newBreaker(2, time.Minute)

	assert.Error(t, s.DeletePrincipal(context.Background(), "p1"))
	assert.Error(t, s.DeletePrincipal(context.Background(), "p1"))

	err := s.DeletePrincipal(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	b := newBreaker(1, 10*time.Millisecond)

	assert.Error(t, b.call(func() error { return errors.New("boom") }))
	assert.ErrorIs(t, b.call(func() error { return nil }), ErrProviderUnavailable)

	time.Sleep(20 * time.Millisecond)
	assert.NoError(t, b.call(func() error { return nil }))
	assert.NoError(t, b.call(func() error { return nil }))
}

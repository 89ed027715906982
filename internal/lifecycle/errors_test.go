package lifecycle

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapsItsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := upstreamErr("create principal", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "create principal: call failed: connection reset", err.Error())
}

func TestIsKindMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("onboarding: %w", authorizationErr("not the owner"))

	assert.True(t, IsKind(err, KindAuthorization))
	assert.False(t, IsKind(err, KindUpstream))
	assert.False(t, IsKind(errors.New("plain"), KindAuthorization))
}

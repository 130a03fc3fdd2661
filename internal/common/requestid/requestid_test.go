// internal/common/requestid/requestid_test.go
package requestid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsUUID(t *testing.T) {
	id := New()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, New())
}

func TestContextRoundTrip(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))

	ctx := WithContext(context.Background(), "req-123")
	assert.Equal(t, "req-123", FromContext(ctx))
}

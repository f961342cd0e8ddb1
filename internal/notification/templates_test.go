package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInvitation(t *testing.T) {
	body, err := RenderInvitation("http://frontend.local/register/abc123")
	require.NoError(t, err)
	assert.Contains(t, body, `href="http://frontend.local/register/abc123"`)
	assert.Contains(t, body, "Complete Your Registration")
}

func TestRenderPass(t *testing.T) {
	body, err := RenderPass("Asha", "https://storage.local/qr-codes/x.png")
	require.NoError(t, err)
	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, `src="https://storage.local/qr-codes/x.png"`)
	assert.Contains(t, body, "EVENT PASS")
}

func TestRenderPassEscapesName(t *testing.T) {
	body, err := RenderPass("<script>alert(1)</script>", "https://storage.local/qr.png")
	require.NoError(t, err)
	assert.False(t, strings.Contains(body, "<script>"))
}

package comics

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateArtResponseIncludesBalance(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4E, 0x47}

	body := generateArtResponse(image, 7, nil)

	require.Equal(t, true, body["success"])
	require.Equal(t, base64.StdEncoding.EncodeToString(image), body["image_data"])
	assert.Equal(t, 7, body["credits"])
}

func TestGenerateArtResponseOmitsBalanceOnFailedCharge(t *testing.T) {
	body := generateArtResponse([]byte{0x01}, 0, errors.New("deduct failed"))

	require.Equal(t, true, body["success"])
	_, present := body["credits"]
	assert.False(t, present, "credits must not be reported when the charge failed")
}

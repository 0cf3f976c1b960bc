package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(" "))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****wxyz", MaskSecret("tok_abcdwxyz"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j****@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "****", MaskEmail("nope"))
}

func TestMaskMetadataOnlySensitiveKeys(t *testing.T) {
	out := MaskMetadata(map[string]any{
		"token":  "abcdefgh1234",
		"code":   "BEIGE-ABC123",
		"nested": map[string]any{"email": "a@b.io"},
		"":       "dropped",
	})
	assert.Equal(t, "****1234", out["token"])
	assert.Equal(t, "BEIGE-ABC123", out["code"])
	assert.Equal(t, "a****@b.io", out["nested"].(map[string]any)["email"])
	assert.NotContains(t, out, "")
	assert.Nil(t, MaskMetadata(nil))
}

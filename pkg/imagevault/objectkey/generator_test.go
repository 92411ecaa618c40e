package objectkey_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tendant/image-vault/pkg/imagevault/objectkey"
)

func TestOwnerScopedGenerator(t *testing.T) {
	gen := objectkey.NewOwnerScopedGenerator()
	id := uuid.New()

	key := gen.GenerateKey("user-1", id, "photo.png")
	assert.Equal(t, fmt.Sprintf("user-1/%s/photo.png", id), key)
}

func TestOwnerScopedGeneratorSanitizes(t *testing.T) {
	gen := objectkey.NewOwnerScopedGenerator()
	id := uuid.New()

	key := gen.GenerateKey("org/team", id, "my photo?.png")
	assert.Equal(t, fmt.Sprintf("org_team/%s/my_photo_.png", id), key)
}

func TestOwnerScopedGeneratorIsDeterministic(t *testing.T) {
	gen := objectkey.NewOwnerScopedGenerator()
	id := uuid.New()

	first := gen.GenerateKey("user-1", id, "Photo.PNG")
	second := gen.GenerateKey("user-1", id, "Photo.PNG")
	assert.Equal(t, first, second)

	// Case is preserved, not normalized.
	assert.Contains(t, first, "Photo.PNG")
}

func TestCustomFuncGenerator(t *testing.T) {
	gen := objectkey.NewCustomFuncGenerator(func(ownerID string, imageID uuid.UUID, fileName string) string {
		return "flat/" + imageID.String()
	})
	id := uuid.New()

	key := gen.GenerateKey("user-1", id, "photo.png")
	assert.Equal(t, "flat/"+id.String(), key)
}

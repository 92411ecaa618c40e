// Package objectkey generates blob store keys for image objects.
package objectkey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies.
// Keys must be deterministic for a given (ownerID, imageID, fileName): they
// are derived once at upload time, persisted on the metadata record, and
// never regenerated.
type Generator interface {
	GenerateKey(ownerID string, imageID uuid.UUID, fileName string) string
}

// OwnerScopedGenerator produces the default flat layout:
// {owner}/{imageID}/{filename}. Keeping the owner as the leading path
// segment groups one owner's blobs under a common prefix.
type OwnerScopedGenerator struct{}

func NewOwnerScopedGenerator() *OwnerScopedGenerator {
	return &OwnerScopedGenerator{}
}

func (g *OwnerScopedGenerator) GenerateKey(ownerID string, imageID uuid.UUID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", sanitizeComponent(ownerID), imageID, sanitizeComponent(fileName))
}

// CustomFuncGenerator allows callers to provide their own key generation
// function.
type CustomFuncGenerator struct {
	GenerateFunc func(ownerID string, imageID uuid.UUID, fileName string) string
}

func NewCustomFuncGenerator(fn func(ownerID string, imageID uuid.UUID, fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(ownerID string, imageID uuid.UUID, fileName string) string {
	return g.GenerateFunc(ownerID, imageID, fileName)
}

// sanitizeComponent replaces characters that are unsafe in object keys or
// filesystem paths. Case is preserved: the key must stay deterministic for
// the exact inputs it was derived from.
func sanitizeComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(component)
}

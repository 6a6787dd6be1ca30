package render

import (
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// backgroundFallback is the colour used when no background image is found.
var backgroundFallback = rl.NewColor(24, 26, 32, 255)

// candidatePaths returns path as given and relative to the repository root, so the binary
// finds assets whether it is run from the root or from cmd/metaballs.
func candidatePaths(path string) []string {
	if path == "" {
		return nil
	}
	if filepath.IsAbs(path) {
		return []string{path}
	}
	return []string{path, filepath.Join("..", "..", path)}
}

// LoadBackground loads the background image at path into a texture. When the file is missing
// or unreadable a 1x1 texture of backgroundFallback is returned instead, and found is false.
// Must be called after the window exists.
func LoadBackground(path string) (tex rl.Texture2D, found bool) {
	for _, p := range candidatePaths(path) {
		cleaned := filepath.Clean(p)
		if _, err := os.Stat(cleaned); err != nil {
			continue
		}
		tex = rl.LoadTexture(cleaned)
		if rl.IsTextureValid(tex) {
			rl.SetTextureWrap(tex, rl.WrapClamp)
			return tex, true
		}
	}
	img := rl.GenImageColor(1, 1, backgroundFallback)
	defer rl.UnloadImage(img)
	return rl.LoadTextureFromImage(img), false
}

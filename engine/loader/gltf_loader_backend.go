package loader

import (
	"io"
	"log"

	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
)

// gltfLoaderBackendImpl is the loaderBackend for glTF and GLB files.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend(loopMode clip.LoopMode, logger *log.Logger) loaderBackend {
	return &gltfLoaderBackendImpl{importer: newGLTFImporter(loopMode, logger)}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*Asset, error) {
	return b.importer.Import(path)
}

func (b *gltfLoaderBackendImpl) LoadReader(name string, r io.Reader, isGLB bool) (*Asset, error) {
	return b.importer.ImportReader(name, r, isGLB)
}

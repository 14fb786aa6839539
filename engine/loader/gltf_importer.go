package loader

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/clip"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	loopMode clip.LoopMode
	logger   *log.Logger
}

// gltfImporter runs the parser and every extractor over one document.
type gltfImporter interface {
	// Import loads a .gltf or .glb file.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - *Asset: the imported skeletons, mesh nodes and clips
	//   - error: error if import fails
	Import(path string) (*Asset, error)

	// ImportReader loads a document from r.
	//
	// Parameters:
	//   - name: the asset name, used when the document has no scene name
	//   - r: the reader providing glTF JSON or GLB data
	//   - isGLB: true for GLB data
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if import fails
	ImportReader(name string, r io.Reader, isGLB bool) (*Asset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter(loopMode clip.LoopMode, logger *log.Logger) gltfImporter {
	return &gltfImporterImpl{loopMode: loopMode, logger: logger}
}

func (imp *gltfImporterImpl) Import(path string) (*Asset, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	base := filepath.Base(path)
	return imp.importFromParser(parser, strings.TrimSuffix(base, filepath.Ext(base)))
}

func (imp *gltfImporterImpl) ImportReader(name string, r io.Reader, isGLB bool) (*Asset, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return imp.importFromParser(parser, name)
}

func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*Asset, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	asset := &Asset{Name: gltfAssetName(doc, fallbackName)}
	targets := gltfTargets{bones: make(map[int]string), meshes: make(map[int]*MeshData)}
	used := make(map[string]int)

	skeletons := newGLTFSkeletonExtractor(parser)
	for i, skin := range doc.Skins {
		name := uniqueName(skin.Name, "Skeleton3D", used)
		data, joints, err := skeletons.ExtractSkeleton(i, name)
		if err != nil {
			return nil, fmt.Errorf("skin %d: %w", i, err)
		}
		asset.Skeletons = append(asset.Skeletons, *data)
		// A joint shared by several skins is animated through the first one.
		for node, bone := range joints {
			if _, ok := targets.bones[node]; !ok {
				targets.bones[node] = name + ":" + bone
			}
		}
	}

	meshes, byNode, err := newGLTFMeshExtractor(parser).ExtractMeshNodes(used)
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}
	asset.Meshes = meshes
	for node, idx := range byNode {
		targets.meshes[node] = &asset.Meshes[idx]
	}

	animations := newGLTFAnimationExtractor(parser, imp.loopMode)
	for i := range doc.Animations {
		c, skipped, err := animations.ExtractAnimation(i, targets)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		if skipped > 0 {
			imp.logger.Printf("[Loader] %s: animation %q skipped %d channels without a skeleton or mesh target", asset.Name, c.Name(), skipped)
		}
		asset.Clips = append(asset.Clips, c)
	}

	return asset, nil
}

// gltfAssetName prefers the default scene's name over the fallback.
func gltfAssetName(doc *gltfDocument, fallback string) string {
	var sceneName string
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		sceneName = doc.Scenes[*doc.Scene].Name
	}
	return common.Coalesce(sceneName, fallback, "unnamed_asset")
}

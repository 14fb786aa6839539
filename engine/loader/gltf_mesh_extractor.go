package loader

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor collects the nodes carrying a mesh, with the mesh's morph targets exposed
// as blend shapes. Vertex data is not read.
type gltfMeshExtractor interface {
	// ExtractMeshNodes returns one MeshData per node that references a mesh.
	//
	// Parameters:
	//   - used: node names already taken under the asset root, updated in place
	//
	// Returns:
	//   - []MeshData: the mesh nodes in document order
	//   - map[int]int: glTF node index to position in the returned slice
	//   - error: error if a node references a missing mesh
	ExtractMeshNodes(used map[string]int) ([]MeshData, map[int]int, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMeshNodes(used map[string]int) ([]MeshData, map[int]int, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}

	var meshes []MeshData
	byNode := make(map[int]int)
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Mesh == nil {
			continue
		}
		if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
			return nil, nil, fmt.Errorf("node %d: mesh index %d out of range", i, *n.Mesh)
		}
		mesh := &doc.Meshes[*n.Mesh]

		name := n.Name
		if name == "" {
			name = mesh.Name
		}
		data := MeshData{
			Name:      uniqueName(name, fmt.Sprintf("mesh_%d", i), used),
			Transform: gltfNodeTransform(n),
			Shapes:    morphTargetNames(mesh),
		}

		// Node weights override the mesh defaults.
		weights := mesh.Weights
		if len(n.Weights) > 0 {
			weights = n.Weights
		}
		data.Weights = make([]float64, len(data.Shapes))
		copy(data.Weights, weights)

		byNode[i] = len(meshes)
		meshes = append(meshes, data)
	}
	return meshes, byNode, nil
}

// morphTargetNames names the morph targets of mesh. Exporters store the names in
// extras.targetNames; targets without a name get "shape_<index>".
func morphTargetNames(mesh *gltfMesh) []string {
	count := len(mesh.Weights)
	for _, p := range mesh.Primitives {
		count = max(count, len(p.Targets))
	}

	var named []gjson.Result
	if len(mesh.Extras) > 0 {
		named = gjson.GetBytes(mesh.Extras, "targetNames").Array()
	}

	names := make([]string, count)
	used := make(map[string]int)
	for i := range names {
		var name string
		if i < len(named) && named[i].Type == gjson.String {
			name = named[i].String()
		}
		names[i] = uniqueName(name, fmt.Sprintf("shape_%d", i), used)
	}
	return names
}

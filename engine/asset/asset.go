// Package asset turns delivered glTF 2.0 bytes (.gltf JSON or .glb binary) into an
// ImportedModel: triangle meshes, one skeleton and the base-color textures they reference.
package asset

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-toon/engine/model"
	"github.com/qmuntal/gltf"
)

// ErrNoMesh is returned when a document decodes but holds no drawable triangle primitive.
var ErrNoMesh = errors.New("model has no triangle mesh")

// Decode parses glTF or GLB bytes into an ImportedModel. Nodes of the default scene are walked
// and every triangle primitive becomes one ImportedMesh. Static primitives are baked into model
// space by their node's world transform; skinned primitives are left in bind space and reference
// the skeleton built from the first skin in use.
//
// Parameters:
//   - name: the model identifier, usually the file name
//   - data: the encoded document
//
// Returns:
//   - *model.ImportedModel: the decoded model
//   - error: a decode error, or ErrNoMesh when nothing drawable was found
func Decode(name string, data []byte) (*model.ImportedModel, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return DecodeDocument(name, doc)
}

// DecodeDocument converts an already parsed document.
//
// Parameters:
//   - name: the model identifier
//   - doc: the parsed document
//
// Returns:
//   - *model.ImportedModel: the decoded model
//   - error: an accessor error, or ErrNoMesh when nothing drawable was found
func DecodeDocument(name string, doc *gltf.Document) (*model.ImportedModel, error) {
	d := newGLTFDecoder(doc)

	im := &model.ImportedModel{Name: name}

	skinIndex := d.activeSkin()
	if skinIndex >= 0 {
		skeleton, jointOf, err := d.extractSkeleton(skinIndex)
		if err != nil {
			return nil, fmt.Errorf("%s skin %d: %w", name, skinIndex, err)
		}
		im.Skeleton = skeleton
		im.Animations = d.extractClips(jointOf)
	}

	for _, inst := range d.meshInstances() {
		skinned := im.Skeleton != nil && inst.skin == skinIndex
		meshes, err := d.extractMesh(inst, skinned)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		im.Meshes = append(im.Meshes, meshes...)
	}
	if len(im.Meshes) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoMesh)
	}

	im.Textures = d.textures()

	slog.Info("model decoded",
		"name", name,
		"meshes", len(im.Meshes),
		"joints", jointCount(im),
		"textures", len(im.Textures),
		"animations", len(im.Animations),
	)
	return im, nil
}

func jointCount(im *model.ImportedModel) int {
	if im.Skeleton == nil {
		return 0
	}
	return im.Skeleton.Len()
}

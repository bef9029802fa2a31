package asset

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Carmen-Shannon/oxy-toon/common"
	"github.com/Carmen-Shannon/oxy-toon/engine/model"
	"github.com/Carmen-Shannon/oxy-toon/engine/uniform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

const extTextureTransform = "KHR_texture_transform"

// textureTransformExt is the JSON body of KHR_texture_transform.
type textureTransformExt struct {
	Offset   *[2]float32 `json:"offset"`
	Rotation float32     `json:"rotation"`
	Scale    *[2]float32 `json:"scale"`
}

// applyMaterial copies the base-color factor, texture reference and texture transform of the
// primitive's material. A texture whose image cannot be resolved leaves the mesh vertex colored.
func (d *gltfDecoder) applyMaterial(prim *gltf.Primitive, mesh *model.ImportedMesh) {
	if prim.Material == nil || int(*prim.Material) >= len(d.doc.Materials) {
		return
	}
	mat := d.doc.Materials[*prim.Material]
	if mat == nil || mat.PBRMetallicRoughness == nil {
		return
	}
	pbr := mat.PBRMetallicRoughness
	if pbr.BaseColorFactor != nil {
		mesh.BaseColor = mgl32.Vec4(*pbr.BaseColorFactor)
	}

	info := pbr.BaseColorTexture
	if info == nil {
		return
	}
	if info.TexCoord != 0 {
		slog.Warn("base color texture uses a secondary uv set, sampling TEXCOORD_0 instead",
			"material", mat.Name, "texcoord", info.TexCoord)
	}
	slot, ok := d.textureSlot(info.Index)
	if !ok {
		return
	}
	mesh.TextureIndex = slot
	mesh.TextureTransform = textureTransform(info.Extensions)
}

// textureSlot resolves a texture index to its position in the textures list, registering the
// source image on first use.
func (d *gltfDecoder) textureSlot(textureIndex uint32) (int, bool) {
	if int(textureIndex) >= len(d.doc.Textures) {
		return 0, false
	}
	tex := d.doc.Textures[textureIndex]
	if tex == nil || tex.Source == nil || int(*tex.Source) >= len(d.doc.Images) {
		return 0, false
	}
	src := *tex.Source
	if slot, ok := d.imageSlot[src]; ok {
		return slot, true
	}
	slot := len(d.images)
	d.imageSlot[src] = slot
	d.images = append(d.images, src)
	return slot, true
}

// textureTransform parses KHR_texture_transform. The extension is decoded from its raw JSON, or
// from a map when another component already unmarshalled it.
func textureTransform(exts gltf.Extensions) *uniform.TextureTransform {
	raw, ok := exts[extTextureTransform]
	if !ok {
		return nil
	}

	var body []byte
	switch v := raw.(type) {
	case json.RawMessage:
		body = v
	case []byte:
		body = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			slog.Warn("unreadable texture transform", "error", err)
			return nil
		}
		body = b
	}

	var ext textureTransformExt
	if err := json.Unmarshal(body, &ext); err != nil {
		slog.Warn("unreadable texture transform", "error", err)
		return nil
	}
	t := uniform.IdentityTextureTransform()
	if ext.Offset != nil {
		t.Offset = mgl32.Vec2(*ext.Offset)
	}
	if ext.Scale != nil {
		t.Scale = mgl32.Vec2(*ext.Scale)
	}
	t.Rotation = ext.Rotation
	return &t
}

// textures returns the encoded images referenced by materials, in slot order. An image whose
// bytes cannot be located is returned empty; decoding it later fails with a named error.
func (d *gltfDecoder) textures() []common.ImportedTexture {
	out := make([]common.ImportedTexture, len(d.images))
	for slot, src := range d.images {
		img := d.doc.Images[src]
		if img == nil {
			continue
		}
		out[slot].Name = common.Coalesce(img.Name, fmt.Sprintf("image%d", src))
		out[slot].MimeType = img.MimeType
		data, err := d.imageBytes(img)
		if err != nil {
			slog.Warn("texture image unavailable", "image", out[slot].Name, "error", err)
			continue
		}
		out[slot].Data = data
	}
	return out
}

// imageBytes returns the encoded bytes of an image stored in a buffer view or a data URI.
// External files are not resolved; models arrive as bytes.
func (d *gltfDecoder) imageBytes(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		if int(*img.BufferView) >= len(d.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		view := d.doc.BufferViews[*img.BufferView]
		if int(view.Buffer) >= len(d.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", view.Buffer)
		}
		data := d.doc.Buffers[view.Buffer].Data
		start, end := int(view.ByteOffset), int(view.ByteOffset)+int(view.ByteLength)
		if end > len(data) {
			return nil, fmt.Errorf("buffer view %d overruns its buffer", *img.BufferView)
		}
		return data[start:end], nil
	}

	uri := img.URI
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("external image %q is not supported", uri)
	}
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("data uri is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return data, nil
}

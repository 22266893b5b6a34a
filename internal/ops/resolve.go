package ops

import (
	"github.com/pkg/errors"

	imageflow "github.com/imageflow/imageflow"
)

func resolveGroupPath(doc *imageflow.Document, path string) (*imageflow.LayerGroup, error) {
	if path == "" {
		path = "/"
	}
	node, err := doc.ResolveNode(path)
	if err != nil {
		return nil, err
	}
	group, ok := node.(*imageflow.LayerGroup)
	if !ok {
		return nil, errors.Errorf("path does not resolve to group: %s", path)
	}
	return group, nil
}

func resolveNode(doc *imageflow.Document, path string) (imageflow.LayerNode, error) {
	return doc.ResolveNode(path)
}

func resolveLayer(doc *imageflow.Document, path string) (*imageflow.Layer, error) {
	return doc.ResolveLayer(path)
}

// resolveDrawTargetBuffer picks the image or mask buffer a drawing/fill
// action writes into, based on kv's target= (default "image"), allocating
// the mask on first use via mask_fill= (default opaque black).
func resolveDrawTargetBuffer(layer *imageflow.Layer, kv KV) (*imageflow.ImageBuffer, error) {
	target := kv.str("target", "image")
	switch target {
	case "", "image":
		return layer.Image(), nil
	case "mask":
		if layer.Mask() == nil {
			fill := imageflow.PixelRGBA8{A: 255}
			if v, ok := kv.get("mask_fill"); ok {
				parsed, err := parseRGBA(v, true)
				if err != nil {
					return nil, err
				}
				fill = imageflow.PixelRGBA8{R: parsed.r, G: parsed.g, B: parsed.b, A: parsed.a}
			}
			mask, err := imageflow.NewImageBuffer(layer.Image().Width(), layer.Image().Height(), fill)
			if err != nil {
				return nil, err
			}
			layer.SetMask(mask)
		}
		return layer.Mask(), nil
	default:
		return nil, errors.New("target must be image or mask")
	}
}

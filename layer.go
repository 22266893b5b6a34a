package imageflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imageflow/imageflow/internal/compose"
)

// BlendMode identifies how a node's pixels combine with the backdrop during
// compositing. See internal/compose.Mode for the blend math; this alias
// keeps the public API from needing to import an internal package's type
// name directly in user-facing signatures.
type BlendMode = compose.Mode

// Re-exported blend mode constants, matching §4.8.
const (
	BlendNormal     = compose.Normal
	BlendMultiply   = compose.Multiply
	BlendScreen     = compose.Screen
	BlendOverlay    = compose.Overlay
	BlendDarken     = compose.Darken
	BlendLighten    = compose.Lighten
	BlendAdd        = compose.Add
	BlendSubtract   = compose.Subtract
	BlendDifference = compose.Difference
	BlendColorDodge = compose.ColorDodge
)

// LayerNode is the recursive sum type of the document tree: every node is
// either a *Layer or a *LayerGroup.
type LayerNode interface {
	Name() string
	SetName(string)
	Visible() bool
	SetVisible(bool)
	Opacity() float64
	SetOpacity(float64)
	BlendMode() BlendMode
	SetBlendMode(BlendMode)
	Offset() (int, int)
	SetOffset(int, int)
	Transform() Transform2D
	SetTransform(Transform2D)
	Mask() *ImageBuffer
	SetMask(*ImageBuffer)
}

// nodeAttrs holds the presentation attributes shared by Layer and
// LayerGroup: name, visibility, opacity, blend mode, offset, transform and
// an optional mask. Embedding this struct keeps both node kinds' common
// behavior in one place without pointer-based inheritance.
type nodeAttrs struct {
	name      string
	visible   bool
	opacity   float64
	blendMode BlendMode
	offsetX   int
	offsetY   int
	transform Transform2D
	mask      *ImageBuffer
}

func newNodeAttrs(name string) nodeAttrs {
	return nodeAttrs{name: name, visible: true, opacity: 1, blendMode: BlendNormal, transform: Identity()}
}

func (n *nodeAttrs) Name() string       { return n.name }
func (n *nodeAttrs) SetName(v string)   { n.name = v }
func (n *nodeAttrs) Visible() bool      { return n.visible }
func (n *nodeAttrs) SetVisible(v bool)  { n.visible = v }
func (n *nodeAttrs) Opacity() float64   { return n.opacity }
func (n *nodeAttrs) SetOpacity(v float64) {
	n.opacity = clamp01(v)
}
func (n *nodeAttrs) BlendMode() BlendMode        { return n.blendMode }
func (n *nodeAttrs) SetBlendMode(m BlendMode)    { n.blendMode = m }
func (n *nodeAttrs) Offset() (int, int)          { return n.offsetX, n.offsetY }
func (n *nodeAttrs) SetOffset(x, y int)          { n.offsetX, n.offsetY = x, y }
func (n *nodeAttrs) Transform() Transform2D      { return n.transform }
func (n *nodeAttrs) SetTransform(t Transform2D)  { n.transform = t }
func (n *nodeAttrs) Mask() *ImageBuffer          { return n.mask }
func (n *nodeAttrs) SetMask(m *ImageBuffer)      { n.mask = m }

// Layer owns a single ImageBuffer plus the presentation attributes common
// to every node.
type Layer struct {
	nodeAttrs
	image *ImageBuffer
}

// NewLayer constructs a named Layer with a width x height buffer filled
// with fill.
func NewLayer(name string, width, height int, fill PixelRGBA8) (*Layer, error) {
	buf, err := NewImageBuffer(width, height, fill)
	if err != nil {
		return nil, err
	}
	return &Layer{nodeAttrs: newNodeAttrs(name), image: buf}, nil
}

// Image returns the layer's pixel buffer.
func (l *Layer) Image() *ImageBuffer { return l.image }

// SetImage replaces the layer's pixel buffer, e.g. after a resize.
func (l *Layer) SetImage(buf *ImageBuffer) { l.image = buf }

// LayerGroup is an ordered sequence of child nodes, each a Layer or another
// LayerGroup, carrying the same presentation attributes as Layer.
type LayerGroup struct {
	nodeAttrs
	children []LayerNode
}

// NewLayerGroup constructs an empty named group.
func NewLayerGroup(name string) *LayerGroup {
	return &LayerGroup{nodeAttrs: newNodeAttrs(name)}
}

// Children returns the group's child nodes in order.
func (g *LayerGroup) Children() []LayerNode { return g.children }

// AddChild appends a child node, returning it for chaining.
func (g *LayerGroup) AddChild(child LayerNode) LayerNode {
	g.children = append(g.children, child)
	return child
}

// ChildAt returns the i-th child, or an error if i is out of range.
func (g *LayerGroup) ChildAt(i int) (LayerNode, error) {
	if i < 0 || i >= len(g.children) {
		return nil, fmt.Errorf("imageflow: child index %d out of range (have %d children)", i, len(g.children))
	}
	return g.children[i], nil
}

// Document owns a root LayerGroup and the canvas dimensions used by the
// compositor's output buffer.
type Document struct {
	width, height int
	root          *LayerGroup
}

// NewDocument constructs a Document with the given canvas size and an
// empty root group.
func NewDocument(width, height int) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Document{width: width, height: height, root: NewLayerGroup("root")}, nil
}

func (d *Document) Width() int        { return d.width }
func (d *Document) Height() int       { return d.height }
func (d *Document) Root() *LayerGroup { return d.root }

// ErrPathNotFound is returned when a node path does not resolve to an
// existing node.
var ErrPathNotFound = fmt.Errorf("imageflow: path does not resolve to a node")

// ResolveNode resolves a "/"-separated path of zero-based child indices
// (e.g. "/0/1") to a node in the document tree. "/" resolves to the root
// group itself.
func (d *Document) ResolveNode(path string) (LayerNode, error) {
	indices, err := parseNodePath(path)
	if err != nil {
		return nil, err
	}
	var node LayerNode = d.root
	for _, idx := range indices {
		group, ok := node.(*LayerGroup)
		if !ok {
			return nil, fmt.Errorf("%w: %q addresses a child of a non-group node", ErrPathNotFound, path)
		}
		child, err := group.ChildAt(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrPathNotFound, path, err)
		}
		node = child
	}
	return node, nil
}

// ResolveLayer resolves a path to a *Layer, failing if it addresses a
// group instead.
func (d *Document) ResolveLayer(path string) (*Layer, error) {
	node, err := d.ResolveNode(path)
	if err != nil {
		return nil, err
	}
	layer, ok := node.(*Layer)
	if !ok {
		return nil, fmt.Errorf("%w: %q resolves to a group, not a layer", ErrPathNotFound, path)
	}
	return layer, nil
}

func parseNodePath(path string) ([]int, error) {
	if path == "" || path == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("imageflow: node path %q must start with \"/\"", path)
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("imageflow: node path %q has non-integer segment %q", path, part)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

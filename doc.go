// Package imageflow implements a layered-document image processing core: raster
// codecs for BMP, PNG, GIF and baseline JPEG, a tree of layers and groups
// composited with Porter-Duff blending in linearized sRGB, a 2D rasterizer,
// a resampler, a suite of pixel-space effects, and a textual operation
// interpreter that drives all of the above.
//
// The package is organized around a small set of concrete types rather than
// deep interface hierarchies: [Color] and [PixelRGBA8] are plain channel
// containers, [RasterImage] and [ImageBuffer] are the bounds-checked pixel
// stores (the rasterizer draws into an ImageBuffer through a [BufferView]),
// and [LayerNode] is a two-case sum type ([*Layer] or [*LayerGroup]) that
// forms the document tree.
//
// Codec implementations live in the codec/bmp, codec/png, codec/gif and
// codec/jpeg subpackages, each exposing Encode/Decode functions over its own
// RGB Image type; [LoadImage] and [SaveImage] convert between those and
// [*ImageBuffer]. The operation interpreter lives in internal/ops and is
// exercised by cmd/imageflow.
package imageflow

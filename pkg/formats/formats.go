// Package formats provides parsers for mesh interchange formats: Wavefront
// OBJ text, glTF 2.0 JSON documents and the GLB binary container.
//
// Parsers work on in-memory data and return a mesh.Mesh; fetching files
// and external buffers is left to the caller.
package formats

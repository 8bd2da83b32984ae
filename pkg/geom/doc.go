// Package geom holds the value types the mesh kernel is built from:
// points and vectors (sdfx v3.Vec), triangles, planes, rays, segments and
// axis-aligned bounding boxes.
//
// Every equality or zero test in the kernel routes through the tolerance
// helpers in this package. Edge hashing, degenerate-case collapse and
// containment parity all depend on the same epsilon, so callers must not
// compare coordinates with == directly.
package geom

// Package tlvc turns an exported chat transcript (HTML) into a sanitized,
// segmented, and scored set of JSON artifacts. The transform is a linear
// pipeline: resolve, extract, redact, segment, score, lint, serialize.
//
// This package contains domain types, interfaces, and the pure transform
// stages following Ben Johnson's Standard Package Layout. Implementations
// that wrap a dependency live in subdirectories named after it (e.g.,
// goquery/, fs/, orderedmap/).
package tlvc

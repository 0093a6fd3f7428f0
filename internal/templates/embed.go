// Package templates holds the project bundle compiled into the binary.
package templates

import "embed"

// Bundle contains manifest.yaml and the rust-service template tree.
//
//go:embed manifest.yaml rust-service
var Bundle embed.FS

const ManifestPath = "manifest.yaml"

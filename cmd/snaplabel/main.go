// Package main provides the snaplabel CLI.
//
// snaplabel uploads an image through a pre-signed URL and asks the snaplabel
// API to detect labels in it.
//
// Usage:
//
//	snaplabel analyze <image>
//	snaplabel result <analysis-id>
//
// See --help for all available options.
package main

func main() {
	Execute()
}

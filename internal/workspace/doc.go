// Package workspace manages ephemeral scratch directories for container
// post-processing and other steps that unpack archives on disk.
//
// Each workspace is a timestamped directory (e.g., bookbuilder-20260825-122336)
// under the system temp root, removed completely by Cleanup. Callers are
// expected to pair Create with a deferred Cleanup so every exit path, error
// paths included, releases the directory.
package workspace

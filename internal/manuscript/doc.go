// Package manuscript locates book directories, resolves named support
// artifacts through the override hierarchy, and assembles the ordered set of
// markdown input files for a build.
package manuscript

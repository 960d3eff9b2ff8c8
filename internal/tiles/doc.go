// Package tiles turns directories of images into mosaic tile libraries.
//
// A tile directory is either used directly or resolved from a content label:
// each label maps to a sub-directory of the source root named by LabelKey.
// Files are read in name order so that a directory always yields the same
// library, and therefore the same plan for a given seed.
package tiles

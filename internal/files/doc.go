// Package files provides file system discovery and output path helpers.
//
// Discovery walks the input root with doublestar globs and selects the
// candidate documents for one contract type:
//
//	discovery := files.NewDiscovery("/data/pnt", logger)
//	docs, err := discovery.FindDocuments("licitaciones")
//
// Manager and AppendixPath take care of the output side.
package files

// Package files locates dataset files on disk.
//
// Discovery lists .csv and .xlsx files in a directory ordered by
// modification time and resolves a directory argument to its newest dataset,
// so a daily drop folder can be validated without naming the file:
//
//	d := files.NewDiscovery(paths.BaseDir)
//	path, err := d.ResolveDataset("data/incoming")
package files

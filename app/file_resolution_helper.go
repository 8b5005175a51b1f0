package app

import "github.com/ludo-technologies/treedit/domain"

// ResolveFilePaths resolves the tree files to compare.
// If every path is already a supported tree file, the paths are returned
// as given, keeping the caller's order. Otherwise tree files are collected
// from the paths using the include and exclude patterns.
func ResolveFilePaths(
	fileReader domain.FileReader,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	allFiles := true
	for _, path := range paths {
		if !fileReader.IsValidTreeFile(path) {
			allFiles = false
			break
		}

		// FileExists returns true only for files, not directories
		exists, err := fileReader.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	if allFiles {
		return paths, nil
	}

	files, err := fileReader.CollectTreeFiles(
		paths,
		recursive,
		includePatterns,
		excludePatterns,
	)
	if err != nil {
		return nil, err
	}

	return files, nil
}

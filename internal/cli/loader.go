package cli

import (
	"errors"
	"os"

	"github.com/typedb/typeql-sub003/internal/compiler"
)

// loadSpecs loads one directory, or any number of .cue files. Errors that
// stop loading altogether (missing paths, CUE syntax or conflicts) become
// ExitCommandError; malformed documents are returned as compile errors
// for the caller to report.
func loadSpecs(paths []string, mode compiler.LoadMode, formatter *OutputFormatter) (*compiler.LoadResult, []*compiler.LoadError, error) {
	var (
		result *compiler.LoadResult
		errs   []error
	)
	if len(paths) == 1 && isDir(paths[0]) {
		result, errs = compiler.LoadDir(paths[0], mode)
	} else {
		result, errs = compiler.LoadFiles(paths, mode)
	}

	var specErrs []*compiler.LoadError
	for _, err := range errs {
		var le *compiler.LoadError
		if !errors.As(err, &le) {
			le = &compiler.LoadError{Code: compiler.ErrCodeGeneric, Message: err.Error()}
		}
		if result == nil || le.Code != compiler.ErrCodeInvalidSpec {
			_ = formatter.Error(le.Code, le.Message, nil)
			return nil, nil, WrapExitError(ExitCommandError, "failed to load specs", le)
		}
		specErrs = append(specErrs, le)
	}

	formatter.VerboseLog("Loaded %d CUE file(s): %d queries, %d rules",
		result.FileCount, len(result.Queries), len(result.Rules))
	return result, specErrs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

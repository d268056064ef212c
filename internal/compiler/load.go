package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/typedb/typeql-sub003/internal/rule"
)

// LoadMode controls how errors are handled while loading.
type LoadMode int

const (
	// LoadModeFailFast stops at the first error.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll reports every error.
	LoadModeCollectAll
)

// Load error codes.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002"
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004"
	ErrCodeNotFound    = "E005"
	ErrCodeBuildFailed = "E006"
	ErrCodeInvalidSpec = "E010"
	ErrCodeEmpty       = "E011"
)

// LoadResult holds every query and rule found, in label order.
type LoadResult struct {
	Queries   []*Query
	Rules     []*rule.Rule
	Value     cue.Value
	FileCount int
}

// LoadError is an error found while loading specs.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads every .cue file under dir, unified into one value.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	sort.Strings(files)
	return LoadFiles(files, mode)
}

// LoadFiles compiles each named .cue file and unifies the results. The
// files may live in different directories.
func LoadFiles(files []string, mode LoadMode) (*LoadResult, []error) {
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: "no CUE files given"}}
	}
	ctx := cuecontext.New()
	value := ctx.CompileString("{}")
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("spec file not found: %s", f)}}
		}
		fv := ctx.CompileBytes(data, cue.Filename(f))
		if err := fv.Err(); err != nil {
			return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading %s: %v", f, err)}}
		}
		value = value.Unify(fv)
	}
	return finish(value, len(files), mode)
}

func finish(value cue.Value, fileCount int, mode LoadMode) (*LoadResult, []error) {
	if err := value.Validate(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}
	slog.Debug("loaded specs", "files", fileCount)

	result := &LoadResult{Value: value, FileCount: fileCount}
	errs := compileAll(value, result, mode)

	if len(result.Queries) == 0 && len(result.Rules) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeEmpty, Message: "no queries or rules found in specs"})
	}
	return result, errs
}

// Compile compiles every query and rule of an already built value.
func Compile(value cue.Value, mode LoadMode) (*LoadResult, []error) {
	result := &LoadResult{Value: value}
	return result, compileAll(value, result, mode)
}

func compileAll(value cue.Value, result *LoadResult, mode LoadMode) []error {
	var errs []error

	each := func(section string, fn func(cue.Value) error) bool {
		sv := value.LookupPath(cue.ParsePath(section))
		if !sv.Exists() {
			return true
		}
		iter, err := sv.Fields()
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating %s: %v", section, err)})
			return mode != LoadModeFailFast
		}
		for iter.Next() {
			if err := fn(iter.Value()); err != nil {
				errs = append(errs, convertCompileError(err, section+"."+iter.Selector().String()))
				if mode == LoadModeFailFast {
					return false
				}
			}
		}
		return true
	}

	ok := each("query", func(v cue.Value) error {
		q, err := CompileQuery(v)
		if err == nil {
			result.Queries = append(result.Queries, q)
		}
		return err
	})
	if ok {
		each("rule", func(v cue.Value) error {
			r, err := CompileRule(v)
			if err == nil {
				result.Rules = append(result.Rules, r)
			}
			return err
		})
	}

	sort.SliceStable(result.Queries, func(i, j int) bool { return result.Queries[i].Name < result.Queries[j].Name })
	sort.SliceStable(result.Rules, func(i, j int) bool { return result.Rules[i].Label < result.Rules[j].Label })
	return errs
}

// FindCUEFiles returns every .cue file under dir.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func convertCompileError(err error, context string) *LoadError {
	var ce *CompileError
	if errors.As(err, &ce) {
		return &LoadError{
			Code:    ErrCodeInvalidSpec,
			Message: fmt.Sprintf("%s: %s: %s", context, ce.Field, ce.Message),
			Pos:     ce.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s: %v", context, err)}
}

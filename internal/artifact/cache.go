// Package artifact owns the compiled-artifact side of a cycle: the
// process-wide source-text-keyed cache and the boundary to the external
// compiler/loader.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vk/nativeflow/internal/ctxlog"
	"github.com/vk/nativeflow/internal/translate"
)

// CompileError reports a rejection by the compiler/loader boundary. It
// carries the path of the written source file so the failure can be
// diagnosed without inspecting internals.
type CompileError struct {
	Path string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling workflow source file %s: %v", e.Path, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compiler is the external compiler/loader boundary: given a written source
// file, produce (and load) a callable artifact or fail.
type Compiler interface {
	Compile(ctx context.Context, path string) error
}

// Cache maps exact generated source text to a previously assigned artifact
// id, guaranteeing at most one compile per distinct source per process. It
// is constructed once at process start and passed into every cycle; entries
// are never evicted, so unlimited graph-shape diversity within one process
// is an accepted growth vector.
//
// A Cache is not safe for concurrent cycles within one process: worker
// cycles run sequentially, and lookup-or-insert is a plain map access.
type Cache struct {
	workDir string
	ids     map[string]int
	nextID  int
}

// NewCache creates an empty cache writing intermediate source files under
// workDir. An empty workDir means the current directory.
func NewCache(workDir string) *Cache {
	return &Cache{
		workDir: workDir,
		ids:     make(map[string]int),
	}
}

// GetOrCompile returns the artifact id for the given source text, compiling
// it first if this process has never seen that exact text. On a miss the
// source is written to a file whose name embeds both the new id and the
// process id, so concurrently running worker processes never clobber each
// other's intermediates; the entry-point placeholder is suffixed with the id
// before writing. The generated file is deliberately not removed after a
// successful compile: the loaded artifact may still reference it on some
// toolchains, and it is the primary diagnostic for compile failures.
func (c *Cache) GetOrCompile(ctx context.Context, source string, compiler Compiler) (int, error) {
	logger := ctxlog.FromContext(ctx)

	if id, ok := c.ids[source]; ok {
		logger.Debug("Workflow source already compiled, reusing artifact.", "artifactID", id)
		return id, nil
	}

	id := c.nextID
	path := filepath.Join(c.workDir, fmt.Sprintf("workflow_%d_%d.cxx", id, os.Getpid()))
	final := strings.Replace(source, translate.EntryName, EntryPoint(id), 1)

	if err := os.WriteFile(path, []byte(final), 0644); err != nil {
		return 0, fmt.Errorf("writing workflow source file %s: %w", path, err)
	}

	logger.Debug("Compiling workflow source.", "artifactID", id, "path", path)
	if err := compiler.Compile(ctx, path); err != nil {
		return 0, &CompileError{Path: path, Err: err}
	}

	c.ids[source] = id
	c.nextID++
	return id, nil
}

// Len returns the number of distinct compiled sources. Primarily for tests.
func (c *Cache) Len() int {
	return len(c.ids)
}

// EntryPoint returns the entry-point symbol name of an artifact. The id
// suffix lets multiple artifacts coexist in one process's symbol space.
func EntryPoint(id int) string {
	return translate.EntryName + strconv.Itoa(id)
}

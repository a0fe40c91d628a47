package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textcore/internal/engine"
	"github.com/dshills/textcore/internal/logging"
)

// DefaultTimeout bounds one script run.
const DefaultTimeout = 5 * time.Second

// State is a Lua interpreter bound to one engine.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	engine *engine.Engine
	out    io.Writer
	logger *logging.Logger

	timeout time.Duration
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithOutput sets where print writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		s.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a Lua state with the buf and wrap tables bound to e.
func NewState(e *engine.Engine, opts ...Option) *State {
	s := &State{
		engine:  e,
		out:     os.Stdout,
		logger:  logging.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	s.L = L

	L.SetGlobal("print", L.NewFunction(s.print))
	registerBuffer(L, e)
	registerWrap(L, e)
	return s
}

// openSafeLibraries opens only the libraries without host access.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// DoString runs code as a chunk called name.
func (s *State) DoString(ctx context.Context, name, code string) error {
	return s.run(ctx, name, func() error {
		fn, err := s.L.Load(strings.NewReader(code), name)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// DoFile runs the script at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return &Error{Source: path, Err: err}
	}
	return s.DoString(ctx, path, string(code))
}

// run executes fn under the state lock with ctx installed, so that a
// cancelled or expired context stops the VM.
func (s *State) run(ctx context.Context, name string, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	defer func() {
		if r := recover(); r != nil {
			err = &Error{Source: name, Err: fmt.Errorf("lua panic: %v", r)}
		}
	}()

	start := time.Now()
	if runErr := fn(); runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = ctxErr
		}
		s.logger.Warn("script %s failed: %v", name, runErr)
		return &Error{Source: name, Err: runErr}
	}
	s.logger.Debug("script %s finished in %s", name, time.Since(start))
	return nil
}

// print writes its arguments separated by tabs, like Lua's own print.
func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.out, strings.Join(parts, "\t"))
	return 0
}

// Close releases the interpreter. Later runs return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

package system

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/collision/ecs/component"
)

var scriptTriggerHooks = [...]struct {
	phase string
	fn    string
}{
	{"enter", "on_enter"},
	{"stay", "on_stay"},
	{"exit", "on_exit"},
}

// ScriptTrigger is a trigger listener backed by a tengo script. The script
// may define on_enter(state, other), on_stay(state, other) and
// on_exit(state, other); missing hooks are ignored. state is a map kept for
// the life of the component.
type ScriptTrigger struct {
	Path string

	compiled *tengo.Compiled
	state    *tengo.Map
	hooks    map[string]bool
	logger   *log.Logger
	lastErr  error
}

var ScriptTriggerComponent = component.NewComponent[ScriptTrigger]()

// NewScriptTrigger compiles src. path is only used in messages.
func NewScriptTrigger(path string, src []byte, logger *log.Logger) (*ScriptTrigger, error) {
	if logger == nil {
		logger = log.Default()
	}
	hooks, err := definedHooks(src)
	if err != nil {
		return nil, fmt.Errorf("script trigger %s: %w", path, err)
	}

	var dispatch strings.Builder
	first := true
	for _, h := range scriptTriggerHooks {
		if !hooks[h.phase] {
			continue
		}
		if !first {
			dispatch.WriteString(" else ")
		}
		fmt.Fprintf(&dispatch, "if __phase == %q {\n\t%s(__state, __other)\n}", h.phase, h.fn)
		first = false
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + dispatch.String() + "\n"))
	_ = script.Add("__phase", "")
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__other", 0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script trigger %s: %w", path, err)
	}
	return &ScriptTrigger{
		Path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		hooks:    hooks,
		logger:   logger,
	}, nil
}

// definedHooks runs the bare script once to learn which hooks it declares.
func definedHooks(src []byte) (map[string]bool, error) {
	probe := tengo.NewScript(src)
	probe.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	compiled, err := probe.Run()
	if err != nil {
		return nil, err
	}
	hooks := make(map[string]bool, len(scriptTriggerHooks))
	for _, h := range scriptTriggerHooks {
		if compiled.IsDefined(h.fn) {
			hooks[h.phase] = true
		}
	}
	return hooks, nil
}

func (s *ScriptTrigger) OnTriggerEnter(other uint64) { s.run("enter", other) }

func (s *ScriptTrigger) OnTriggerStay(other uint64) { s.run("stay", other) }

func (s *ScriptTrigger) OnTriggerExit(other uint64) { s.run("exit", other) }

// Handles reports whether the script defines a hook for phase.
func (s *ScriptTrigger) Handles(phase string) bool {
	return s != nil && s.hooks[phase]
}

// State returns a Go copy of the script state map.
func (s *ScriptTrigger) State() map[string]any {
	if s == nil || s.state == nil {
		return nil
	}
	out, _ := tengo.ToInterface(s.state).(map[string]any)
	return out
}

// Err returns the error of the most recent failed hook, if any.
func (s *ScriptTrigger) Err() error {
	if s == nil {
		return nil
	}
	return s.lastErr
}

func (s *ScriptTrigger) run(phase string, other uint64) {
	if s == nil || s.compiled == nil || !s.hooks[phase] {
		return
	}
	if err := s.runPhase(phase, other); err != nil {
		s.lastErr = err
		s.logger.Warn("script trigger failed", "script", s.Path, "phase", phase, "other", other, "err", err)
	}
}

func (s *ScriptTrigger) runPhase(phase string, other uint64) error {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Set("__other", int64(other)); err != nil {
		return err
	}
	return s.compiled.Run()
}

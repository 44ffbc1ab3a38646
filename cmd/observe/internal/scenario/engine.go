package scenario

import (
	"fmt"
	"io"

	"github.com/go-drift/observe/pkg/observe"
)

// Host is the owning instance the scenario drives. The name field keeps the
// struct non-empty: zero-size owners can share an address, which would
// collapse their per-owner state.
type Host struct {
	name string
}

// Run executes the scenario, writing one line per delivered notification
// to out.
func Run(sc *Scenario, out io.Writer) error {
	var opts []observe.Option
	if sc.Property.AlwaysNotify {
		opts = append(opts, observe.AlwaysNotify())
	}
	if sc.Property.IncludePrevious {
		opts = append(opts, observe.IncludePrevious())
	}

	prop := observe.New[Host, string](opts...)
	register := observe.NewRegister(prop)
	unregister := observe.NewUnregister(prop)
	host := &Host{name: "scenario"}

	printers := make(map[string]observe.Callback[string])
	printerFor := func(name string) observe.Callback[string] {
		if cb, ok := printers[name]; ok {
			return cb
		}
		var cb observe.Callback[string]
		if sc.Property.IncludePrevious {
			cb = observe.FuncWithPrevious(func(v, prev string) {
				fmt.Fprintf(out, "%s <- %q (was %q)\n", name, v, prev)
			})
		} else {
			cb = observe.Func(func(v string) {
				fmt.Fprintf(out, "%s <- %q\n", name, v)
			})
		}
		printers[name] = cb
		return cb
	}

	for i, step := range sc.Steps {
		switch {
		case step.Set != nil:
			prop.Set(host, *step.Set)
		case step.Register != "":
			if err := register.Call(host, printerFor(step.Register)); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		case step.Unregister != "":
			if cb, ok := printers[step.Unregister]; ok {
				unregister.Call(host, cb)
			}
		}
	}
	return nil
}

package operations

// OverrideSet holds the call-scoped substitutions collected by Overrides.
// It is layered on top of the Registry at resolution time and never merged into it.
type OverrideSet struct {
	Steps     map[string]Command
	Params    Command
	ParamsErr error
}

// Overrides collects call-time substitutions. A fresh Overrides is handed to the function passed
// with WithOverrides on every call, so overrides never leak into other calls.
type Overrides struct {
	set OverrideSet
}

func newOverrides() *Overrides {
	return &Overrides{set: OverrideSet{Steps: make(map[string]Command)}}
}

// Step substitutes impl for the step named name for this call only.
func (o *Overrides) Step(name string, impl Command) {
	o.set.Steps[name] = impl
}

// Params substitutes the params transform for this call only. WithError sets the payload used
// when the transform fails.
func (o *Overrides) Params(transform Command, opts ...BindingOption) {
	cfg := newBindingConfig(opts)
	o.set.Params = transform
	o.set.ParamsErr = cfg.err
}

// Configurations returns the collected substitutions.
func (o *Overrides) Configurations() OverrideSet {
	return o.set
}

// collectOverrides evaluates configure against a fresh container.
func collectOverrides(configure func(*Overrides)) *OverrideSet {
	if configure == nil {
		return nil
	}

	o := newOverrides()
	configure(o)
	set := o.Configurations()

	return &set
}

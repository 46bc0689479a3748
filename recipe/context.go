package recipe

import (
	"github.com/qiniu/x/gsh"
)

// Runner executes an external command, propagating its failure.
type Runner interface {
	Run(name string, args ...string) error
}

// shellRunner runs commands through the context's gsh.App.
type shellRunner struct {
	app *gsh.App
}

func (r shellRunner) Run(name string, args ...string) error {
	return r.app.Exec__2(name, args...)
}

// -----------------------------------------------------------------------------

// Context carries everything a lifecycle hook may read or fill in during
// one host session.
type Context struct {
	gsh.App

	// Folders is set by the Layout hook and completed by the host.
	Folders Folders

	meta     Metadata
	options  OptionValues
	settings Settings
	runner   Runner

	requires Requirements
	cppInfo  CppInfo
	info     Info
}

// NewContext returns a Context for the given metadata and resolved values.
// The package identity starts out as the full settings and options.
func NewContext(meta Metadata, settings Settings, options OptionValues) *Context {
	c := &Context{
		meta:     meta.Clone(),
		options:  options.Clone(),
		settings: settings.Clone(),
	}
	gsh.InitApp(&c.App)
	c.runner = shellRunner{app: &c.App}
	c.info = Info{
		Settings: settings.Clone(),
		Options:  options.Clone(),
	}
	return c
}

// Metadata returns a copy of the recipe metadata.
func (c *Context) Metadata() Metadata {
	return c.meta.Clone()
}

// Options returns the resolved option values.
func (c *Context) Options() OptionValues {
	return c.options.Clone()
}

// Settings returns the resolved settings.
func (c *Context) Settings() Settings {
	return c.settings.Clone()
}

// Requires returns the requirement declarations of this session.
func (c *Context) Requires() *Requirements {
	return &c.requires
}

// CppInfo returns the consumer-facing package description.
func (c *Context) CppInfo() *CppInfo {
	return &c.cppInfo
}

// Info returns the package identity.
func (c *Context) Info() *Info {
	return &c.info
}

// Runner returns the command runner used by build helpers.
func (c *Context) Runner() Runner {
	return c.runner
}

// SetRunner replaces the command runner. A nil r restores the shell runner.
func (c *Context) SetRunner(r Runner) {
	if r == nil {
		r = shellRunner{app: &c.App}
	}
	c.runner = r
}

// Exec runs an external command through the context runner.
func (c *Context) Exec(name string, args ...string) error {
	return c.runner.Run(name, args...)
}

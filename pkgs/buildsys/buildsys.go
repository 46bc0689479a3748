package buildsys

// BuildSystem captures shared capabilities of build helpers (CMake, etc).
// It keeps the common lifecycle and env setup; implementations add their own extras.
type BuildSystem interface {
	// Basic paths.
	Source(dir string)
	InstallDir(dir string)

	// Environment helper.
	Env(key, val string)

	// Lifecycle.
	Configure(args ...string) error
	Build(args ...string) error
	Install(args ...string) error
	Test(args ...string) error

	// Where artifacts land.
	OutputDir() string
}

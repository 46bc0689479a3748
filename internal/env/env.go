package env

import (
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable overriding the workspace root.
const HomeEnv = "TCMAKE_HOME"

// WorkDir returns the workspace root, creating it with 0700 permissions if
// needed. It is $TCMAKE_HOME when set, otherwise <UserCacheDir>/.tcmake.
func WorkDir() (string, error) {
	dir := os.Getenv(HomeEnv)
	if dir == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(userCacheDir, ".tcmake")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// Package version reports the version of the aluopt module the binary was built with.
package version

import "runtime/debug"

// Default is the version of a binary built without module information, such as by `go run` in this
// repository.
const Default = "dev"

const modulePath = "github.com/tetratelabs/aluopt"

// GetAluoptVersion returns the version of aluopt in the build information of the running binary, whether
// it is the main module or a dependency.
func GetAluoptVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Default
	}
	return versionOf(info)
}

func versionOf(info *debug.BuildInfo) string {
	if info.Main.Path == modulePath {
		return orDefault(info.Main.Version)
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			if dep.Replace != nil {
				return orDefault(dep.Replace.Version)
			}
			return orDefault(dep.Version)
		}
	}
	return Default
}

// orDefault maps the placeholder of the main module built from a working tree to Default.
func orDefault(v string) string {
	if v == "" || v == "(devel)" {
		return Default
	}
	return v
}

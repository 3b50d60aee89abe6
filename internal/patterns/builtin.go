package patterns

// Group is a named list of pattern sources plus the executables it is meant for.
// Executables are doublestar globs matched against the lowercased base name
// of the wrapped command.
type Group struct {
	Name        string
	Patterns    []string
	Executables []string
}

// Builtin groups, most specific first. Every pattern uses the capture names
// from package message: type, type_error, msg, file, line, col.
var (
	Cargo = Group{
		Name: "cargo",
		Patterns: []string{
			`(?<type>error|warning)(?:\[\w+\])?: (?<msg>.+)\n *--> *(?<file>.+):(?<line>\d+):(?<col>\d+)`,
		},
		Executables: []string{"{cargo,cargo.exe}", "{rustc,rustc.exe}", "{clippy-driver,clippy-driver.exe}"},
	}

	TypeScript = Group{
		Name: "typescript",
		Patterns: []string{
			`^(?<file>[^\n(]+\.(?:ts|tsx|mts|cts))\((?<line>\d+),(?<col>\d+)\): *(?<type>error|warning) *TS\d+: *(?<msg>[^\n]+)`,
			`^(?<file>[^\n:]+\.(?:ts|tsx|mts|cts)):(?<line>\d+):(?<col>\d+) - (?<type>error|warning) TS\d+: (?<msg>[^\n]+)`,
		},
		Executables: []string{"{tsc,tsc.cmd,tsc.exe}", "{vue-tsc,vue-tsc.cmd}"},
	}

	Dotnet = Group{
		Name: "dotnet",
		Patterns: []string{
			`^ *(?<file>[^\n(]+\.(?:cs|vb|fs))\((?<line>\d+),(?<col>\d+)\): *(?<type>error|warning) *[A-Z]+\d+: *(?<msg>[^\n]+)`,
		},
		Executables: []string{"{dotnet,dotnet.exe}", "{msbuild,msbuild.exe}", "{csc,csc.exe}"},
	}

	Maven = Group{
		Name: "maven",
		Patterns: []string{
			`^\[(?<type>ERROR|WARNING)\] *(?<file>[^\n]+?):\[(?<line>\d+),(?<col>\d+)\] *(?<msg>[^\n]+)`,
		},
		Executables: []string{"{mvn,mvn.cmd,mvnw}", "mvnw.cmd"},
	}

	GCC = Group{
		Name: "gcc",
		Patterns: []string{
			`^(?<file>[^\n:]+):(?<line>\d+):(?<col>\d+): (?:fatal )?(?<type>error|warning): (?<msg>[^\n]+)`,
			`^(?<file>[^\n:]+):(?<line>\d+): (?:fatal )?(?<type>error|warning): (?<msg>[^\n]+)`,
		},
		Executables: []string{"gcc*", "g++*", "cc", "c++", "clang*", "*-gcc*", "*-g++*", "make", "gmake", "ninja", "cmake"},
	}

	Ruff = Group{
		Name: "ruff",
		Patterns: []string{
			`^(?<file>[^\s:]+\.pyi?):(?<line>\d+):(?<col>\d+): (?<msg>[A-Z]+\d+ [^\n]+)`,
		},
		Executables: []string{"{ruff,ruff.exe}"},
	}

	Go = Group{
		Name: "go",
		Patterns: []string{
			`^(?<type_error>)(?<file>[^\s:]+\.go):(?<line>\d+):(?:(?<col>\d+):)? (?<msg>[^\n]+)`,
		},
		Executables: []string{"{go,go.exe}", "{golangci-lint,golangci-lint.exe}", "{staticcheck,staticcheck.exe}"},
	}
)

// Builtins returns the builtin groups in lookup order.
func Builtins() []Group {
	return []Group{Cargo, TypeScript, Dotnet, Maven, GCC, Ruff, Go}
}

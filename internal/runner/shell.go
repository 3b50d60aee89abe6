package runner

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// shellCommand is the fallback when a single command string has to go through a shell.
func shellCommand(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd.exe", []string{"/C", command}
	}
	return "sh", []string{"-c", command}
}

// resolveCommand decides how to start argv.
// Order is stable:
// 1. An explicit shell gets the joined argv as its script
// 2. A single string that already calls a shell (bash -c "...") runs that shell directly
// 3. A single string with spaces goes through the OS default shell
// 4. Otherwise argv[0] is executed with the remaining args
func resolveCommand(shell string, argv []string) (string, []string) {
	if name, args, ok := commandForShell(shell, joinArgs(shell, argv)); ok {
		return name, args
	}

	if len(argv) == 1 {
		if name, args, ok := directShellCommand(argv[0]); ok {
			return preferWindowsShell(name), args
		}
		if strings.ContainsAny(strings.TrimSpace(argv[0]), " \t") {
			return shellCommand(argv[0])
		}
	}

	return argv[0], append([]string{}, argv[1:]...)
}

// commandForShell builds an exec name and args for a configured shell.
// shellSpec can be just a name, a path, or a quoted path with optional extra args,
// which become prefix args for the shell.
func commandForShell(shellSpec string, command string) (string, []string, bool) {
	trimmedShellSpec := strings.TrimSpace(shellSpec)
	if trimmedShellSpec == "" {
		return "", nil, false
	}

	shellExecutable, shellPrefixArgs := splitExecutableAndArgs(trimmedShellSpec)
	if strings.TrimSpace(shellExecutable) == "" {
		return "", nil, false
	}

	args := append([]string{}, shellPrefixArgs...)

	switch shellFamily(shellExecutable) {
	case "bash":
		execName := shellExecutable
		if strings.EqualFold(shellExecutable, filepath.Base(shellExecutable)) {
			execName = preferWindowsShell("bash")
		}
		return execName, append(args, "-lc", command), true

	case "sh":
		execName := shellExecutable
		if strings.EqualFold(shellExecutable, filepath.Base(shellExecutable)) {
			execName = preferWindowsShell("sh")
		}
		return execName, append(args, "-c", command), true

	case "pwsh", "powershell":
		return shellExecutable, append(args, "-NoProfile", "-NonInteractive", "-Command", command), true

	case "cmd":
		// cmd always runs as cmd.exe with prefix args before /C.
		return "cmd.exe", append(args, "/C", command), true

	default:
		// Unknown shell: <shell> <prefixArgs...> <command>
		return shellExecutable, append(args, command), true
	}
}

// shellFamily maps an executable path to bash, sh, pwsh, powershell, cmd or "".
func shellFamily(executable string) string {
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(executable, `\`, "/")))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "bash", "sh", "pwsh", "powershell", "cmd":
		return base
	default:
		return ""
	}
}

// joinArgs turns argv into one script for shell. A single element is passed
// through untouched so callers can hand over pipelines and redirects.
func joinArgs(shell string, argv []string) string {
	if len(argv) == 1 {
		return argv[0]
	}
	family := shellFamily(firstField(shell))
	quoted := make([]string, 0, len(argv))
	for _, arg := range argv {
		quoted = append(quoted, quoteArg(family, arg))
	}
	return strings.Join(quoted, " ")
}

func quoteArg(family string, arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'`$\\|&;<>()*?![]{}#~%") {
		return arg
	}
	switch family {
	case "cmd", "pwsh", "powershell":
		return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
	default:
		return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
}

func firstField(cmdline string) string {
	exe, _ := splitExecutableAndArgs(cmdline)
	return exe
}

// directShellCommand detects a command that already explicitly calls a shell.
// Examples:
//
//	bash -lc "make test"
//	powershell -NoProfile -Command "dotnet build"
func directShellCommand(command string) (string, []string, bool) {
	trimmedCommand := strings.TrimSpace(command)
	if trimmedCommand == "" {
		return "", nil, false
	}

	for _, shell := range []string{"bash", "sh"} {
		if name, args, ok := parseDirectShellInvocation(trimmedCommand, shell); ok {
			return name, args, true
		}
	}

	// Wrapping a PowerShell call inside cmd.exe /C mangles quoting, so run it directly.
	for _, shell := range []string{"pwsh", "powershell"} {
		if name, args, ok := parseDirectPowerShellInvocation(trimmedCommand, shell); ok {
			return name, args, true
		}
	}

	return "", nil, false
}

func parseDirectShellInvocation(command string, expectedShell string) (string, []string, bool) {
	executableToken, remainingText := cutFirstToken(command)
	if executableToken == "" || shellFamily(executableToken) != expectedShell {
		return "", nil, false
	}

	flagToken, remainingAfterFlag := cutFirstToken(strings.TrimSpace(remainingText))
	if flagToken != "-lc" && flagToken != "-c" {
		return "", nil, false
	}

	script, ok := unquoteShellArg(strings.TrimSpace(remainingAfterFlag))
	if !ok {
		return "", nil, false
	}

	return expectedShell, []string{flagToken, script}, true
}

func parseDirectPowerShellInvocation(command string, expectedShell string) (string, []string, bool) {
	executableToken, remainingText := cutFirstToken(command)
	if executableToken == "" || shellFamily(executableToken) != expectedShell {
		return "", nil, false
	}

	remaining := strings.TrimSpace(remainingText)
	prefixArgs := make([]string, 0, 6)

	for remaining != "" {
		nextToken, rest := cutFirstToken(remaining)
		if nextToken == "" {
			return "", nil, false
		}

		lowerToken := strings.ToLower(nextToken)
		if lowerToken == "-command" || lowerToken == "-c" {
			scriptText := strings.TrimSpace(rest)
			if scriptText == "" {
				return "", nil, false
			}
			if unquoted, ok := unquoteShellArg(scriptText); ok {
				scriptText = unquoted
			}
			args := append(prefixArgs, nextToken, scriptText)
			return expectedShell, args, true
		}

		prefixArgs = append(prefixArgs, nextToken)
		remaining = strings.TrimSpace(rest)
	}
	return "", nil, false
}

// splitExecutableAndArgs handles simple shell command lines like:
//
//	pwsh
//	"C:\Program Files\PowerShell\7\pwsh.exe" -NoProfile
func splitExecutableAndArgs(cmdline string) (string, []string) {
	trimmed := strings.TrimSpace(cmdline)
	if trimmed == "" {
		return "", nil
	}

	// An unterminated quote leaves the whole cmdline as the executable.
	if first := trimmed[0]; first == '"' || first == '\'' {
		closing := strings.IndexByte(trimmed[1:], first)
		if closing == -1 {
			return trimmed, nil
		}
		executable := trimmed[1 : closing+1]
		after := strings.TrimSpace(trimmed[closing+2:])
		if after == "" {
			return executable, nil
		}
		return executable, strings.Fields(after)
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 1 {
		return fields[0], nil
	}
	return fields[0], fields[1:]
}

// cutFirstToken splits off the first whitespace separated token. A quoted
// first token may contain spaces; an unterminated quote yields nothing.
func cutFirstToken(text string) (string, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ""
	}

	if first := trimmed[0]; first == '"' || first == '\'' {
		closing := strings.IndexByte(trimmed[1:], first)
		if closing == -1 {
			return "", ""
		}
		return trimmed[1 : closing+1], strings.TrimSpace(trimmed[closing+2:])
	}

	end := strings.IndexAny(trimmed, " \t")
	if end == -1 {
		return trimmed, ""
	}
	return trimmed[:end], strings.TrimSpace(trimmed[end:])
}

func unquoteShellArg(arg string) (string, bool) {
	trimmed := strings.TrimSpace(arg)
	if len(trimmed) < 2 {
		return "", false
	}

	quote := trimmed[0]
	if (quote != '"' && quote != '\'') || trimmed[len(trimmed)-1] != quote {
		return "", false
	}

	if quote == '"' {
		if unquoted, err := strconv.Unquote(trimmed); err == nil {
			return unquoted, true
		}
	}
	// Single quotes are literal.
	return trimmed[1 : len(trimmed)-1], true
}

// Executable returns the program a command line will run, for pattern group
// detection. A single string is split on its first token; a direct shell
// invocation reports the script's first token instead of the shell.
func Executable(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	if len(argv) > 1 {
		return argv[0]
	}
	if _, args, ok := directShellCommand(argv[0]); ok {
		token, _ := cutFirstToken(args[len(args)-1])
		return token
	}
	token, _ := cutFirstToken(argv[0])
	return token
}

// preferWindowsShell avoids the WSL bash.exe launcher when Git for Windows is installed.
func preferWindowsShell(shell string) string {
	if runtime.GOOS != "windows" {
		return shell
	}

	shellPath, err := exec.LookPath(shell)
	if err != nil {
		return shell
	}

	if isWSLLauncher(shellPath) {
		if alt := findGitShell(shell); alt != "" {
			return alt
		}
	}

	return shellPath
}

func isWSLLauncher(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, `\system32\bash.exe`) ||
		strings.Contains(lower, `\system32\wsl.exe`) ||
		strings.Contains(lower, `\windowsapps\bash.exe`) ||
		strings.Contains(lower, `\windowsapps\wsl.exe`)
}

func findGitShell(shell string) string {
	name := shell + ".exe"
	for _, root := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)")} {
		if root == "" {
			continue
		}
		for _, dir := range []string{filepath.Join("Git", "usr", "bin"), filepath.Join("Git", "bin")} {
			candidate := filepath.Join(root, dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

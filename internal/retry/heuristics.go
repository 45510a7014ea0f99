package retry

import (
	"regexp"
	"strings"
)

var permissionDeniedRe = regexp.MustCompile(`(?i)permission denied`)
var commandNotFoundRe = regexp.MustCompile(`(?i)(command not found|not recognized as an internal or external command|no such file or directory)`)

// knownInstallNames maps a binary to the package name apt installs it
// under, for the small set of commonly-missing tools worth an automatic
// suggestion. Anything not listed here falls through to the translator.
var knownInstallNames = map[string]string{
	"curl":   "curl",
	"wget":   "wget",
	"git":    "git",
	"docker": "docker.io",
	"jq":     "jq",
	"rsync":  "rsync",
	"unzip":  "unzip",
	"htop":   "htop",
	"vim":    "vim",
	"tmux":   "tmux",
}

// localAutoFix applies the small set of local heuristics the spec calls
// out before ever asking the translator: a permission-denied failure gets
// retried with a sudo prefix (unless it already has one), and a
// command-not-found failure against a known binary gets an install
// suggestion instead of a literal retry. Returns ok=false when no
// heuristic applies.
func localAutoFix(command, stderr string) (fixed string, ok bool) {
	if permissionDeniedRe.MatchString(stderr) {
		trimmed := strings.TrimSpace(command)
		if strings.HasPrefix(trimmed, "sudo ") {
			return "", false
		}
		return "sudo " + trimmed, true
	}

	if commandNotFoundRe.MatchString(stderr) {
		binary := firstWord(command)
		if pkg, known := knownInstallNames[binary]; known {
			return "sudo apt-get install -y " + pkg, true
		}
	}

	return "", false
}

func firstWord(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

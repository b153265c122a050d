package security

import "regexp"

// Destructive shell idioms blocked by substring match against the lowercased
// command text. Checked before patterns and before the executable check.
var blacklistedCommands = []string{
	// System-destructive commands
	"rm -rf /", "rm -rf /*", "mkfs", "dd if=/dev/zero of=/dev/sda",
	":(){:|:&};:", "echo > /dev/sda", "mv /* /dev/null",

	// Privilege escalation
	"sudo", "su ", "sudo ", "pkexec", "doas",

	// Network attacks
	"nc -e", "ncat -e", "netcat -e",

	// Pipe-to-shell downloads
	"wget -O- | sh", "curl | sh", "wget -O- | bash", "curl | bash",
}

// Dangerous command shapes that need more than a substring match.
var restrictedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`>\s*/dev/`),                     // writing to device files
	regexp.MustCompile(`>\s*/proc/`),                    // writing to proc
	regexp.MustCompile(`>\s*/sys/`),                     // writing to sys
	regexp.MustCompile(`rm\s+-rf\s+[^/]`),               // rm -rf with argument
	regexp.MustCompile(`wget\s+.+\s+\|\s+(?:sh|bash)`),  // piping wget to shell
	regexp.MustCompile(`curl\s+.+\s+\|\s+(?:sh|bash)`),  // piping curl to shell
}

// Executables blocked by first-token match in safe mode.
var restrictedExecutables = map[string]bool{
	"chmod":    true,
	"chown":    true,
	"mount":    true,
	"umount":   true,
	"dd":       true,
	"fdisk":    true,
	"shutdown": true,
	"reboot":   true,
	"halt":     true,
	"poweroff": true,
}

// Paths never accessible in safe mode, regardless of operation.
var forbiddenPaths = []string{
	"/etc/shadow", "/etc/passwd", "/etc/sudoers",
	"/root", "/var/log/auth.log", "/var/log/secure",
}

// System paths that are read-only in safe mode.
var readOnlyPaths = []string{
	"/etc", "/var", "/usr", "/boot", "/bin", "/sbin",
	"/lib", "/lib64", "/dev", "/proc", "/sys",
}

// URL schemes that are never fetched.
var blockedSchemes = map[string]bool{
	"file":   true,
	"ftp":    true,
	"sftp":   true,
	"smtp":   true,
	"telnet": true,
}

// Hostname prefixes treated as private-range addresses. This is a literal
// string check on the hostname, not a CIDR match: IP-literal obfuscation and
// DNS rebinding are not caught. The "172.2" entry covers 172.20.* through
// 172.29.* (and the bare "172.2" host).
var privateHostPrefixes = []string{
	"192.168.",
	"10.",
	"172.16.", "172.17.", "172.18.", "172.19.",
	"172.2",
	"172.30.", "172.31.",
}

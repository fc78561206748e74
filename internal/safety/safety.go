// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     safety
// Description: Deny-by-default allowlist gate over generated commands
// License:     MIT
// ============================================================================

package safety

import (
	"fmt"
	"strings"

	"github.com/msto63/hermes/internal/model"
)

// MaxCommandLength bounds any command admitted for execution
const MaxCommandLength = 512

// allowedVerbs is the closed set of docker subcommands the gateway will
// ever execute. Anything else is rejected, allowlist not heuristic.
var allowedVerbs = map[string]bool{
	"restart": true,
	"start":   true,
	"stop":    true,
	"logs":    true,
	"exec":    true,
	"ps":      true,
	"inspect": true,
	"stats":   true,
	"top":     true,
	"port":    true,
	"diff":    true,
	"images":  true,
	"version": true,
	"info":    true,
	"system":  true,
}

// containerVerbs are the allowed verbs that operate on a single container
// and therefore must reference the resolved target.
var containerVerbs = map[string]bool{
	"restart": true,
	"start":   true,
	"stop":    true,
	"logs":    true,
	"exec":    true,
	"inspect": true,
	"stats":   true,
	"top":     true,
	"port":    true,
	"diff":    true,
}

// metacharacters that would let a single command smuggle in a second one
var metacharacters = []string{";", "&&", "||", "|", "`", "$(", "\n", "\r"}

// dangerousPatterns are substring denials on the lowercased command
var dangerousPatterns = []string{
	"rm -rf", "rmi -f", "--privileged", "sudo su", "mkfs", "fdisk", "dd if=",
}

// UnsafeCommandError reports why a generated command was rejected
type UnsafeCommandError struct {
	Command string
	Reason  string
}

// Error implements the error interface
func (e *UnsafeCommandError) Error() string {
	return fmt.Sprintf("unsafe command rejected: %s", e.Reason)
}

// Validator is a pure predicate over generated command strings. It knows
// every configured container identifier so a command naming a different
// configured resource is caught.
type Validator struct {
	knownContainers map[string]bool
}

// New creates a Validator aware of all configured container identifiers
func New(serviceMapping map[string]string) *Validator {
	known := make(map[string]bool, len(serviceMapping))
	for _, container := range serviceMapping {
		known[container] = true
	}
	return &Validator{knownContainers: known}
}

// Validate checks a command against the allowlist for the given resolved
// target. A nil return means the command may be executed; any non-nil
// return is a hard reject.
func (v *Validator) Validate(command string, target model.ResolvedTarget) error {
	command = strings.TrimSpace(command)

	if command == "" {
		return &UnsafeCommandError{Command: command, Reason: "empty command"}
	}
	if len(command) > MaxCommandLength {
		return &UnsafeCommandError{Command: command,
			Reason: fmt.Sprintf("command length %d exceeds limit %d", len(command), MaxCommandLength)}
	}

	for _, meta := range metacharacters {
		if strings.Contains(command, meta) {
			return &UnsafeCommandError{Command: command,
				Reason: fmt.Sprintf("shell metacharacter %q", meta)}
		}
	}

	lower := strings.ToLower(command)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return &UnsafeCommandError{Command: command,
				Reason: fmt.Sprintf("dangerous pattern %q", pattern)}
		}
	}

	parts := strings.Fields(command)
	if parts[0] != "docker" {
		return &UnsafeCommandError{Command: command, Reason: "command is not a docker invocation"}
	}
	if len(parts) < 2 {
		return &UnsafeCommandError{Command: command, Reason: "missing docker subcommand"}
	}

	verb := parts[1]
	if !allowedVerbs[verb] {
		return &UnsafeCommandError{Command: command,
			Reason: fmt.Sprintf("subcommand %q is not allowlisted", verb)}
	}

	// docker exec needs at least a container and a command to run
	if verb == "exec" && len(parts) < 4 {
		return &UnsafeCommandError{Command: command, Reason: "exec requires a container and a command"}
	}

	// Any configured container referenced must be the resolved target
	referencesTarget := false
	for _, token := range parts[2:] {
		name := containerReference(token)
		if name == "" {
			continue
		}
		if name == target.ContainerID {
			referencesTarget = true
			continue
		}
		if v.knownContainers[name] {
			return &UnsafeCommandError{Command: command,
				Reason: fmt.Sprintf("references container %q, resolved target is %q", name, target.ContainerID)}
		}
	}

	if containerVerbs[verb] && !referencesTarget {
		return &UnsafeCommandError{Command: command,
			Reason: fmt.Sprintf("%s command does not reference resolved target %q", verb, target.ContainerID)}
	}

	return nil
}

// IsSafe is the boolean form of Validate
func (v *Validator) IsSafe(command string, target model.ResolvedTarget) bool {
	return v.Validate(command, target) == nil
}

// containerReference extracts the container name a token refers to: either
// the token itself, or the value of a key=value pair such as
// --filter name=web. Flag tokens without a value refer to nothing.
func containerReference(token string) string {
	if idx := strings.LastIndex(token, "="); idx >= 0 {
		return token[idx+1:]
	}
	if strings.HasPrefix(token, "-") {
		return ""
	}
	return token
}

// machine_rng.go - host-fingerprint nonce source: the current user,
// hostname, real name, and distro identifier folded into a hash, used
// by MachineNonce to bind a nonce to the machine that produced it.
package atomcrypte

import (
	"os"
	"os/user"
	"runtime"
	"strings"
)

// machineFingerprint hashes identifying properties of the current host
// and user. It deliberately avoids anything that changes between runs
// on the same machine (no PIDs, no timestamps).
func machineFingerprint() []byte {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}

	username := "unknown-user"
	realname := ""
	if u, uerr := user.Current(); uerr == nil {
		username = u.Username
		realname = u.Name
	}

	return hash32([]byte(username + "|" + hostname + "|" + realname + "|" + distroID()))
}

// distroID reads the distribution identifier from /etc/os-release,
// falling back to the bare OS name on platforms without one.
func distroID() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return runtime.GOOS
	}
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(line, "ID="); ok {
			return strings.Trim(v, `"`)
		}
	}
	return runtime.GOOS
}

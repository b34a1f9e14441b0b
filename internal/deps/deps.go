// Package deps reports whether the external tools mkvlang drives are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an executable mkvlang shells out to.
type Requirement struct {
	Name        string
	Command     string // bare name looked up on PATH, or an absolute path
	Description string
	Optional    bool
}

// Status is a Requirement after lookup.
type Status struct {
	Requirement
	Path      string // resolved executable, empty when unavailable
	Available bool
	Detail    string
}

// CheckBinaries resolves each requirement's command.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		statuses[i] = resolve(req)
	}
	return statuses
}

func resolve(req Requirement) Status {
	st := Status{Requirement: req}
	if req.Command == "" {
		st.Detail = "command not configured"
		return st
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		st.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return st
	}
	st.Path = path
	st.Available = true
	return st
}

// Missing filters statuses down to unavailable required tools.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, st := range statuses {
		if !st.Available && !st.Optional {
			missing = append(missing, st)
		}
	}
	return missing
}

package identity

import (
	"os"
	"sync"
)

// AgentIdentity describes which agent produced a given write: where it came
// from, what role it was playing, and which build of this software it was.
type AgentIdentity struct {
	Origin string `json:"origin"`
	Role   string `json:"role,omitempty"`
	Build  string `json:"build"`
}

var (
	originOnce sync.Once
	origin     string

	// Build is set at link time via -ldflags "-X", matching the teacher's
	// own version-stamping convention. Left as a plain var so it can be
	// overridden in tests without a build step.
	Build = "dev"
)

func resolveOrigin() string {
	originOnce.Do(func() {
		origin = os.Getenv("AI_ORIGIN")
		if origin == "" {
			origin = "Gemini"
		}
	})
	return origin
}

// Current returns the AgentIdentity for this process. Origin is memoized on
// first call (it is effectively a build/deploy-time constant); Role is read
// fresh from the environment every call since an operator may rotate it
// between operations without restarting the process.
func Current() AgentIdentity {
	return AgentIdentity{
		Origin: resolveOrigin(),
		Role:   os.Getenv("AGENT_ROLE"),
		Build:  Build,
	}
}

package version

const (
	Major = 2
	Minor = 1
	Patch = 0
)

// Version is compared against the X-Lizzy-Version header sent by the agent.
const Version = "2.1.0"

// UserAgent identifies the client on every agent request.
const UserAgent = "lizzy-client/" + Version

package model

// DeploymentRequest is the body of POST /api/stacks. It is built once per
// create invocation and never persisted.
//
// Region is omitted from the payload when empty. KeepStacks and NewTraffic
// are sent as null when unset.
type DeploymentRequest struct {
	SenzaYAML       string   `json:"senza_yaml"`
	StackVersion    string   `json:"stack_version"`
	DisableRollback bool     `json:"disable_rollback"`
	DryRun          bool     `json:"dry_run"`
	KeepStacks      *int     `json:"keep_stacks"`
	NewTraffic      *int     `json:"new_traffic"`
	Parameters      []string `json:"parameters"`
	Tags            []string `json:"tags"`
	Region          string   `json:"region,omitempty"`
}

// Normalized returns a copy whose list fields encode as [] instead of null.
func (r DeploymentRequest) Normalized() DeploymentRequest {
	if r.Parameters == nil {
		r.Parameters = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// UpdateRequest is the body of PATCH /api/stacks/<id>. Exactly one of
// NewTraffic and NewScale is set.
type UpdateRequest struct {
	NewTraffic *int   `json:"new_traffic,omitempty"`
	NewScale   *int   `json:"new_scale,omitempty"`
	Region     string `json:"region,omitempty"`
}

// DeleteRequest is the body of DELETE /api/stacks/<id>.
type DeleteRequest struct {
	DryRun bool   `json:"dry_run"`
	Region string `json:"region,omitempty"`
}

// Traffic is the response of GET /api/stacks/<id>/traffic.
type Traffic struct {
	Weight float64 `json:"weight"`
}

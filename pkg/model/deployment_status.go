package model

// Stack statuses the client reacts to. The agent owns the vocabulary and may
// report others.
const (
	StatusCreateComplete         = "CREATE_COMPLETE"
	StatusCreateInProgress       = "CREATE_IN_PROGRESS"
	StatusCreateFailed           = "CREATE_FAILED"
	StatusUpdateComplete         = "UPDATE_COMPLETE"
	StatusRollbackComplete       = "ROLLBACK_COMPLETE"
	StatusUpdateRollbackComplete = "UPDATE_ROLLBACK_COMPLETE"
	StatusDeleteComplete         = "DELETE_COMPLETE"
)

// CompleteStatuses are the states in which an old stack may be deleted.
var CompleteStatuses = []string{
	StatusCreateComplete,
	StatusRollbackComplete,
	StatusUpdateComplete,
	StatusUpdateRollbackComplete,
}

// ErrorBody is the structured error the agent returns on non-2xx responses.
type ErrorBody struct {
	Detail string `json:"detail"`
	Status int    `json:"status"`
	Title  string `json:"title"`
}

package httptransport

// CreateProfileRequest carries the owner's name. Blank names are rejected
// by the workflow with per-field errors in the snapshot, not here.
type CreateProfileRequest struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// SetNavRequest names the section to focus.
type SetNavRequest struct {
	Nav string `json:"nav" validate:"required"`
}

// SubmitEditRequest carries the raw values for the in-flight edit.
type SubmitEditRequest struct {
	Values map[string]string `json:"values" validate:"required"`
}

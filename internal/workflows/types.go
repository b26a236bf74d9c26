package workflows

type PrepareVariantsInput struct {
	Dir          string `json:"dir"`
	BaseName     string `json:"base_name"`
	OriginalName string `json:"original_name"`
	LinearName   string `json:"linear_name"`
}

type PrepareVariantsResult struct {
	OriginalName string `json:"original_name"`
	LinearName   string `json:"linear_name"`
	PageCount    int    `json:"page_count"`
}

type PrepareStatus struct {
	BaseName    string            `json:"base_name"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	Steps       map[string]string `json:"steps"`
	FailReason  string            `json:"fail_reason,omitempty"`
}

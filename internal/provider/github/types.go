package github

type payloadUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

type payloadRepository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

type payloadPullRequest struct {
	Number int `json:"number"`
}

type reviewEventPayload struct {
	Action string `json:"action"`
	Review struct {
		ID    int64       `json:"id"`
		State string      `json:"state"`
		Body  string      `json:"body"`
		User  payloadUser `json:"user"`
	} `json:"review"`
	PullRequest payloadPullRequest `json:"pull_request"`
	Repository  payloadRepository  `json:"repository"`
	Sender      payloadUser        `json:"sender"`
}

type issueCommentPayload struct {
	Action  string `json:"action"`
	Comment struct {
		ID   int64       `json:"id"`
		Body string      `json:"body"`
		User payloadUser `json:"user"`
	} `json:"comment"`
	Issue struct {
		Number      int       `json:"number"`
		PullRequest *struct{} `json:"pull_request"`
	} `json:"issue"`
	Repository payloadRepository `json:"repository"`
	Sender     payloadUser       `json:"sender"`
}

type reviewCommentPayload struct {
	Action  string `json:"action"`
	Comment struct {
		ID        int64       `json:"id"`
		Body      string      `json:"body"`
		Path      string      `json:"path"`
		Line      int         `json:"line"`
		InReplyTo int64       `json:"in_reply_to_id"`
		User      payloadUser `json:"user"`
	} `json:"comment"`
	PullRequest payloadPullRequest `json:"pull_request"`
	Repository  payloadRepository  `json:"repository"`
	Sender      payloadUser        `json:"sender"`
}

type statusEventPayload struct {
	ID         int64             `json:"id"`
	SHA        string            `json:"sha"`
	State      string            `json:"state"`
	Context    string            `json:"context"`
	TargetURL  string            `json:"target_url"`
	Repository payloadRepository `json:"repository"`
	Sender     payloadUser       `json:"sender"`
}

package domain

const (
	MailTypeWelcome        = "welcome"
	MailTypeSequencingDone = "sequencing_done"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

type SequencingDoneMailData struct {
	FullName               string   `json:"fullName"`
	Method                 string   `json:"method"`
	TaskNames              []string `json:"taskNames"`
	TotalWeightedTardiness int64    `json:"totalWeightedTardiness"`
}

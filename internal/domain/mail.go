package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeCreateUser       = "create_user"
	MailTypeResetPassword    = "reset_password"
	MailTypeGenerationReport = "generation_report"
)

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type GenerationReportMailData struct {
	FullName  string `json:"fullName"`
	BatchID   string `json:"batchID"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Shift     string `json:"shift"`
	Capacity  int    `json:"capacity"`
	Total     int    `json:"total"`
}

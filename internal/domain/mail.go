package domain

const (
	MailTypeNewAccount  = "new_account"
	MailTypeMonthlyBill = "monthly_bill"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type NewAccountMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type MonthlyBillMailData struct {
	BusinessName string     `json:"businessName"`
	Bill         ClientBill `json:"bill"`
}

package types

type BankDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

type Theme struct {
	Button     string `json:"button"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

package mailqueue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"new_account.html":  `Hi {{.FullName}} user={{.Username}} pass={{.Password}}`,
		"monthly_bill.html": `{{.Bill.ClientName}}{{range .Bill.Entries}}|{{.Date}}{{if .NotTaken}} -{{else}} {{.Subtotal.StringFixed 2}}{{end}}{{end}}|total={{.Bill.Total.StringFixed 2}}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func encode(t *testing.T, msg domain.MailMessage) []byte {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return body
}

func TestRenderNewAccount(t *testing.T) {
	r, err := NewRenderer(writeTemplates(t), "Apni Gaushala")
	require.NoError(t, err)

	out, err := r.Render(encode(t, domain.MailMessage{
		Type: domain.MailTypeNewAccount,
		To:   "ravi@example.com",
		Data: domain.NewAccountMailData{FullName: "Ravi Kumar", Username: "ravikumar", Password: "s3cret"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "ravi@example.com", out.To)
	assert.Equal(t, "Apni Gaushala - your delivery account", out.Subject)
	assert.Equal(t, "Hi Ravi Kumar user=ravikumar pass=s3cret", out.HTML)
}

func TestRenderMonthlyBill(t *testing.T) {
	r, err := NewRenderer(writeTemplates(t), "Apni Gaushala")
	require.NoError(t, err)

	start := domain.Date{Year: 2024, Month: 3, Day: 1}
	bill := domain.ClientBill{
		ClientName: "Sharma",
		Bill: domain.Bill{
			Start: start,
			End:   start.AddDays(1),
			Entries: []domain.BillEntry{
				{Date: start, Quantity: decimal.NewFromInt(2), PricePerLitre: decimal.NewFromInt(60), Subtotal: decimal.NewFromInt(120)},
				{Date: start.AddDays(1), NotTaken: true},
			},
			Total: decimal.NewFromInt(120),
		},
	}

	out, err := r.Render(encode(t, domain.MailMessage{
		Type: domain.MailTypeMonthlyBill,
		To:   "sharma@example.com",
		Data: domain.MonthlyBillMailData{Bill: bill},
	}))
	require.NoError(t, err)

	assert.Equal(t, "Apni Gaushala - milk bill 2024-03-01 to 2024-03-02", out.Subject)
	assert.Equal(t, "Sharma|2024-03-01 120.00|2024-03-02 -|total=120.00", out.HTML)
}

func TestRenderRejectsBadMessages(t *testing.T) {
	r, err := NewRenderer(writeTemplates(t), "Apni Gaushala")
	require.NoError(t, err)

	_, err = r.Render([]byte(`not json`))
	assert.Error(t, err)

	_, err = r.Render(encode(t, domain.MailMessage{Type: "reset_password", To: "a@example.com"}))
	assert.ErrorIs(t, err, ErrUnknownMailType)

	_, err = r.Render(encode(t, domain.MailMessage{Type: domain.MailTypeNewAccount}))
	assert.Error(t, err)
}

func TestNewRendererRequiresEveryTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new_account.html"), []byte("x"), 0o600))

	_, err := NewRenderer(dir, "Apni Gaushala")
	assert.Error(t, err)
}

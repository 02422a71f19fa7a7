package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"pharmacy/m/domain"
)

var lowStockTmpl = template.Must(template.New("low_stock").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2 style="color: #d9534f;">Low Stock Alert</h2>
<p>The following medicines are running low and need to be reordered:</p>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
<tr><th>Medicine</th><th>Category</th><th>Quantity</th><th>Supplier</th></tr>
{{range .Levels}}<tr><td>{{.Name}}</td><td>{{.Category}}</td><td style="color: #d9534f;">{{.Quantity}}</td><td>{{if .SupplierName}}{{.SupplierName}}{{else}}N/A{{end}}</td></tr>
{{end}}</table>
<p style="color: #777;">Generated {{.Generated}}</p>
</body>
</html>`))

var expiryTmpl = template.Must(template.New("expiry").Funcs(template.FuncMap{
	"overdue": func(days int) int { return -days },
}).Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>Medicine Expiry Alert</h2>
{{if .Expired}}<h3 style="color: #d9534f;">Expired ({{len .Expired}})</h3>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
<tr><th>Medicine</th><th>Batch</th><th>Expiry Date</th><th>Quantity</th><th>Days Overdue</th></tr>
{{range .Expired}}<tr><td>{{.Name}}</td><td>{{.BatchNumber}}</td><td>{{.ExpiryDate}}</td><td>{{.Quantity}}</td><td>{{overdue .Days}}</td></tr>
{{end}}</table>{{end}}
{{if .NearExpiry}}<h3 style="color: #f0ad4e;">Expiring within 30 days ({{len .NearExpiry}})</h3>
<table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse;">
<tr><th>Medicine</th><th>Batch</th><th>Expiry Date</th><th>Quantity</th><th>Days Left</th></tr>
{{range .NearExpiry}}<tr><td>{{.Name}}</td><td>{{.BatchNumber}}</td><td>{{.ExpiryDate}}</td><td>{{.Quantity}}</td><td>{{.Days}}</td></tr>
{{end}}</table>{{end}}
<p style="color: #777;">Generated {{.Generated}}</p>
</body>
</html>`))

var testTmpl = template.Must(template.New("test").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>Pharmacy alert test</h2>
<p>Email alerts are configured correctly. Sent {{.Generated}}.</p>
</body>
</html>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func generatedAt(now time.Time) string {
	return now.Format("2006-01-02 15:04")
}

type lowStockView struct {
	Levels    []domain.StockLevel
	Generated string
}

type expiryView struct {
	Expired    []domain.ExpiringMedicine
	NearExpiry []domain.ExpiringMedicine
	Generated  string
}

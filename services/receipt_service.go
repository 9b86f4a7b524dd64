package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/anjiri1684/activity_hub/configs"
	"github.com/anjiri1684/activity_hub/database"
	"github.com/anjiri1684/activity_hub/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const receiptTemplate = `<!DOCTYPE html>
<html>
<head><style>
body { font-family: Georgia, serif; margin: 48px; color: #222; }
h1 { border-bottom: 2px solid #222; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
td, th { text-align: left; padding: 6px 4px; border-bottom: 1px solid #ddd; }
.totals td { border: none; padding: 3px 4px; }
.grand { font-weight: bold; font-size: 1.1em; }
</style></head>
<body>
<h1>Payment Receipt</h1>
<p>Order {{.OrderID}} &mdash; {{.Date}}</p>
<p>Billed to: {{.OwnerName}}</p>
<table>
<tr><th>Class</th><th>Child</th><th>Amount</th></tr>
{{range .Items}}<tr><td>{{.ClassName}}</td><td>{{.ChildName}}</td><td>{{.Amount}}</td></tr>{{end}}
</table>
<table class="totals">
<tr><td>Subtotal</td><td>{{.Subtotal}}</td></tr>
<tr><td>Discount</td><td>-{{.Discount}}</td></tr>
<tr><td>Tax</td><td>{{.Tax}}</td></tr>
<tr class="grand"><td>Total</td><td>{{.Total}}</td></tr>
</table>
</body>
</html>`

type receiptItem struct {
	ClassName string
	ChildName string
	Amount    string
}

type receiptData struct {
	OrderID   string
	Date      string
	OwnerName string
	Items     []receiptItem
	Subtotal  string
	Discount  string
	Tax       string
	Total     string
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, cents/100, cents%100)
}

// GenerateOrderReceipt renders a PDF receipt for a settled order and stores
// its upload URL on the order. Runs fire-and-forget; failures only log.
func GenerateOrderReceipt(orderID uuid.UUID) {
	var order models.Order
	if err := database.DB.Preload("Owner").Preload("LineItems.Class").Preload("LineItems.Child").
		First(&order, "id = ?", orderID).Error; err != nil {
		log.Printf("🔥 Receipt generation: order %s not found: %v", orderID, err)
		return
	}
	if order.Status != models.OrderStatusPaid && order.Status != models.OrderStatusPartiallyPaid {
		return
	}
	if order.ReceiptURL != nil {
		return
	}

	html, err := renderReceiptHTML(&order)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML for order %s: %v", order.ID, err)
		return
	}

	pdfBytes, err := renderPDFFromHTML(html)
	if err != nil {
		log.Printf("🔥 Failed to render receipt PDF for order %s: %v", order.ID, err)
		return
	}

	url, err := uploadReceipt(pdfBytes, order.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for order %s: %v", order.ID, err)
		return
	}

	if err := database.DB.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("receipt_url", url).Error; err != nil {
		log.Printf("🔥 Failed to save receipt URL for order %s: %v", order.ID, err)
		return
	}
	log.Printf("✅ Generated receipt for order %s", order.ID)
}

func renderReceiptHTML(order *models.Order) (string, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return "", err
	}

	data := receiptData{
		OrderID:   order.ID.String(),
		Date:      time.Now().Format("January 2, 2006"),
		OwnerName: order.Owner.FullName,
		Subtotal:  formatCents(order.SubtotalCents, order.Currency),
		Discount:  formatCents(order.DiscountTotalCents, order.Currency),
		Tax:       formatCents(order.TaxCents, order.Currency),
		Total:     formatCents(order.TotalCents, order.Currency),
	}
	for _, item := range order.LineItems {
		data.Items = append(data.Items, receiptItem{
			ClassName: item.Class.Name,
			ChildName: item.Child.FullName,
			Amount:    formatCents(item.UnitCents, order.Currency),
		})
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func renderPDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceipt(fileBytes []byte, orderID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", orderID, uuid.New().String()),
		Folder:       "activity_hub_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}

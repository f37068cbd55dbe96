package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/fulfillment"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func renderInventory(out io.Writer, rows []model.InventoryRow) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Item ID", "Name", "SKU", "Barcode", "Available"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.ItemID, r.Name, r.SKU, deref(r.Barcode), r.AvailableQuantity})
	}
	t.Render()
}

func renderItems(out io.Writer, items []model.StockItem) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Name", "SKU", "Barcode"})
	for _, i := range items {
		t.AppendRow(table.Row{i.ID, i.Name, i.SKU, deref(i.Barcode)})
	}
	t.Render()
}

func renderRequests(out io.Writer, requests []model.StockRequest) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "ID", "Store", "Status", "Submitted", "Items"})
	for _, r := range requests {
		lines := make([]string, 0, len(r.Items))
		for _, item := range r.Items {
			lines = append(lines, fmt.Sprintf("%s x%d", item.Name, item.RequestedQuantity))
		}
		t.AppendRow(table.Row{
			r.RequestNumber, r.ID, r.StoreLocation, r.Status,
			r.SubmittedAt.Format("2006-01-02 15:04"), strings.Join(lines, ", "),
		})
	}
	t.Render()
}

func renderSession(out io.Writer, s *fulfillment.Session) {
	t := newTable(out)
	t.SetTitle(fmt.Sprintf("Request #%d (%s)", s.RequestNumber, s.StoreLocation))
	t.AppendHeader(table.Row{"SKU", "Name", "Requested", "Fulfilled", "Status"})
	for _, l := range s.Lines {
		t.AppendRow(table.Row{l.SKU, l.Name, l.RequestedQty, l.FulfilledQty, l.Status})
	}
	complete, total := s.Progress()
	t.AppendFooter(table.Row{"", "", "", "Complete", fmt.Sprintf("%d/%d", complete, total)})
	t.Render()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package intake

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"freshops/internal"
	"freshops/internal/config"
	"freshops/internal/storage"
)

func newTestProcessor(t *testing.T) (*Processor, *storage.DB, config.Config) {
	t.Helper()

	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = db.UpsertCustomers([]internal.CustomerRecord{
		{ID: 1, CompanyName: "HeyTea", Branch: "Genting"},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = db.UpsertProducts([]internal.ProductRecord{
		{Code: "AVO-01", Name: "Avocado", BaseUOM: "pcs"},
		{Code: "CAR-01", Name: "Carrot", BaseUOM: "kg"},
		{Code: "MANGO-01", Name: "Mango Gold Susu", BaseUOM: "ctn"},
		{Code: "TOM-01", Name: "Tomato", BaseUOM: "kg"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.OutputDir = filepath.Join(dir, "out")

	return NewProcessor(db, cfg), db, cfg
}

func stageIntake(t *testing.T, db *storage.DB, messageID, subject, sender, fixture string) internal.IntakeRow {
	t.Helper()
	row, err := db.UpsertIntake("imap", messageID, subject, sender, "2026-08-29T08:00:00Z", "hash", filepath.Join("testdata", fixture), "fetched")
	if err != nil {
		t.Fatal(err)
	}
	return row
}

func TestProcessIntakePriceListAutoCommits(t *testing.T) {
	p, db, _ := newTestProcessor(t)
	row := stageIntake(t, db, "<pl-1@evergreen.test>", "Weekly Price List", "sales@evergreen.test", "sample_pricelist.eml")

	res, err := p.ProcessIntake(context.Background(), row)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != internal.IntakePriceList || res.Rows != 2 {
		t.Fatalf("res = %+v", res)
	}

	// Carrot and Tomato committed; the unmatched Dragonfruit line dropped.
	records, err := db.ListPriceRecordsBySupplier("sales@evergreen.test")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].ProductCode != "CAR-01" || records[1].Price != 6.8 {
		t.Fatalf("records = %+v", records)
	}

	got, err := db.MustIntakeByProviderMessageID("imap", "<pl-1@evergreen.test>")
	if err != nil || got.Status != "processed" {
		t.Fatalf("status = %q err = %v", got.Status, err)
	}
}

func TestProcessIntakeOrderStagesReviewSheet(t *testing.T) {
	p, db, cfg := newTestProcessor(t)
	row := stageIntake(t, db, "<ord-1@heytea.test>", "Fwd: order for tomorrow", "ahseng@heytea.test", "sample_order.eml")

	res, err := p.ProcessIntake(context.Background(), row)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != internal.IntakeOrder || res.Rows != 3 {
		t.Fatalf("res = %+v", res)
	}

	outPath := filepath.Join(cfg.OutputDir, "intake", "1_order_review.xlsx")
	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if code, _ := f.GetCellValue(sheet, "F2"); code != "MANGO-01" {
		t.Fatalf("F2 = %q", code)
	}
	if status, _ := f.GetCellValue(sheet, "I4"); status != "unresolved" {
		t.Fatalf("I4 = %q", status)
	}

	// Orders are never auto-committed; the sheet waits for a human.
	items, err := db.GetOrderItems(1)
	if err != nil || len(items) != 0 {
		t.Fatalf("items=%v err=%v", items, err)
	}
	got, err := db.MustIntakeByProviderMessageID("imap", "<ord-1@heytea.test>")
	if err != nil || got.Status != "staged" {
		t.Fatalf("status = %q err = %v", got.Status, err)
	}
}

func TestProcessIntakeUnknownIsSkipped(t *testing.T) {
	p, db, _ := newTestProcessor(t)

	dir := t.TempDir()
	raw := "From: a@b.test\r\nTo: intake@freshops.test\r\nSubject: Re: invoice payment\r\nMIME-Version: 1.0\r\nContent-Type: text/plain\r\n\r\nthanks, transferred already\r\n"
	rawRef := filepath.Join(dir, "unknown.eml")
	if err := os.WriteFile(rawRef, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	row, err := db.UpsertIntake("imap", "<misc-1@b.test>", "Re: invoice payment", "a@b.test", "2026-08-29T09:00:00Z", "hash", rawRef, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.ProcessIntake(context.Background(), row)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != internal.IntakeUnknown || res.Rows != 0 {
		t.Fatalf("res = %+v", res)
	}
	got, err := db.MustIntakeByProviderMessageID("imap", "<misc-1@b.test>")
	if err != nil || got.Status != "skipped" {
		t.Fatalf("status = %q err = %v", got.Status, err)
	}
}

func TestProcessPendingFiltersProvider(t *testing.T) {
	p, db, _ := newTestProcessor(t)
	stageIntake(t, db, "<pl-1@evergreen.test>", "Weekly Price List", "sales@evergreen.test", "sample_pricelist.eml")

	processed, rows, err := p.ProcessPending(context.Background(), 10, "gmail")
	if err != nil || processed != 0 || rows != 0 {
		t.Fatalf("processed=%d rows=%d err=%v", processed, rows, err)
	}

	processed, rows, err = p.ProcessPending(context.Background(), 10, "imap")
	if err != nil || processed != 1 || rows != 2 {
		t.Fatalf("processed=%d rows=%d err=%v", processed, rows, err)
	}
}

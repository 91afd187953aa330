package service

import (
	"context"
	"testing"
	"time"

	"rifa-digital/backend/internal/model"
)

func TestExportPurchases(t *testing.T) {
	repo, _, purchases := newTestRepo()
	svc := NewExportService(repo)
	ctx := context.Background()

	_ = purchases.CreateBatch(ctx, []model.Purchase{
		{Number: "007", Token: "tok-a", BuyerName: "Ana", BuyerEmail: "a@b.com", BuyerPhone: "1", Paid: true, CreatedAt: time.Now()},
		{Number: "042", Token: "tok-b", BuyerName: "Luis", BuyerEmail: "l@b.com", BuyerPhone: "2", CreatedAt: time.Now()},
	})

	f, err := svc.ExportPurchases(ctx)
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Compras", "A1"); got != "Número" {
		t.Errorf("表头不符: %q", got)
	}
	if got, _ := f.GetCellValue("Compras", "A2"); got != "007" {
		t.Errorf("首行号码不符: %q", got)
	}
	if got, _ := f.GetCellValue("Compras", "F2"); got != "Sí" {
		t.Errorf("已支付标记不符: %q", got)
	}
	if got, _ := f.GetCellValue("Compras", "B3"); got != "Luis" {
		t.Errorf("次行买家不符: %q", got)
	}
}

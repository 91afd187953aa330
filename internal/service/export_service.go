package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"rifa-digital/backend/internal/repository"
)

// ExportService 管理端数据导出服务接口
type ExportService interface {
	// ExportPurchases 导出全部售出记录为 Excel 工作簿
	ExportPurchases(ctx context.Context) (*excelize.File, error)
}

type exportService struct {
	repo *repository.Repository
}

// NewExportService 创建导出服务
func NewExportService(repo *repository.Repository) ExportService {
	return &exportService{repo: repo}
}

func (s *exportService) ExportPurchases(ctx context.Context) (*excelize.File, error) {
	purchases, err := s.repo.Purchase.ListSold(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询售出记录失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Compras"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Número", "Nombre", "Email", "Teléfono", "Enlace", "Pagado", "Fecha"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range purchases {
		paid := "No"
		if p.Paid {
			paid = "Sí"
		}
		values := []interface{}{
			p.Number,
			p.BuyerName,
			p.BuyerEmail,
			p.BuyerPhone,
			p.Token,
			paid,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}

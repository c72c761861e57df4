package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

var exportHeaders = []string{
	"ID", "Name", "Slug", "Category", "Price", "InStock", "IsActive",
	"Variants", "Image", "CreatedAt", "UpdatedAt",
}

// ExportProducts writes every product, active or not, as an xlsx workbook.
func (s *Service) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.repo.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		row.AddCell().SetString(p.Category.Name)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetBool(p.InStock)
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetInt(len(p.Variants))
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

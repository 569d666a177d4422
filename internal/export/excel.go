package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"webstudio/internal/config"
	"webstudio/internal/domain"
	"webstudio/internal/models"
	"webstudio/internal/service"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const ordersSheet = "Заказы"

// statusLabels переводит статусы для отчета
var statusLabels = map[models.OrderStatus]string{
	models.StatusPending:    "Ожидает оплаты",
	models.StatusPaid:       "Оплачен",
	models.StatusInProgress: "В работе",
	models.StatusCompleted:  "Завершен",
	models.StatusCancelled:  "Отменен",
}

// ExcelExporter writes the full order collection into an XLSX report for
// the admin panel.
type ExcelExporter struct {
	store  domain.RecordStore
	config config.ExportConfig
	logger *zerolog.Logger
}

func NewExcelExporter(store domain.RecordStore, cfg config.ExportConfig, logger *zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// ExportOrders создает Excel файл со всеми заказами, новые сверху
func (e *ExcelExporter) ExportOrders(ctx context.Context) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.config.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	orders, err := e.store.LoadOrders()
	if err != nil {
		return "", fmt.Errorf("error getting orders: %v", err)
	}
	orders = service.SortByCreatedAtDescending(orders)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ordersSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Клиент", "Email", "Телефон", "Услуга", "Сумма",
		"Статус", "Комментарий", "Создан", "Обновлен",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ordersSheet, cell, header)
		_ = f.SetCellStyle(ordersSheet, cell, cell, headerStyle)
	}

	for i, order := range orders {
		row := i + 2
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("A%d", row), order.ID)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("B%d", row), order.CustomerName)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("C%d", row), order.CustomerEmail)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("D%d", row), order.CustomerPhone)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("E%d", row), order.ServiceName)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("F%d", row), order.TotalPrice)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("G%d", row), statusLabel(order.Status))
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("H%d", row), order.Message)
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("I%d", row), order.CreatedAt.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(ordersSheet, fmt.Sprintf("J%d", row), order.UpdatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(ordersSheet, "A", "A", 16)
	_ = f.SetColWidth(ordersSheet, "B", "B", 20)
	_ = f.SetColWidth(ordersSheet, "C", "C", 25)
	_ = f.SetColWidth(ordersSheet, "D", "D", 20)
	_ = f.SetColWidth(ordersSheet, "E", "E", 25)
	_ = f.SetColWidth(ordersSheet, "F", "F", 12)
	_ = f.SetColWidth(ordersSheet, "G", "G", 16)
	_ = f.SetColWidth(ordersSheet, "H", "H", 40)
	_ = f.SetColWidth(ordersSheet, "I", "I", 18)
	_ = f.SetColWidth(ordersSheet, "J", "J", 18)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("orders_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.config.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("orders", len(orders)).Msg("Orders Excel file created")
	return filePath, nil
}

func statusLabel(status models.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"webstudio/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const ordersRange = "Orders"

var errRowNotFound = errors.New("order row not found")

// SheetsService mirrors the order collection into a Google spreadsheet the
// managers share. The spreadsheet is a read-only ledger; the JSON files
// stay the source of truth.
type SheetsService struct {
	service       *sheets.Service
	ordersSheetID string
	rowCache      map[string]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(credentialsFile, ordersSheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	// Создаем JWT конфигурацию
	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	service := &SheetsService{
		service:       srv,
		ordersSheetID: ordersSheetID,
		rowCache:      make(map[string]int),
	}

	// Warm up cache in background
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		service.WarmUpCache(ctx)
	}()

	return service, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.ordersSheetID, ordersRange+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// ReplaceOrdersSheet полностью перезаписывает лист заказов
func (s *SheetsService) ReplaceOrdersSheet(ctx context.Context, orders []models.Order) error {
	var values [][]interface{}

	headers := []interface{}{"ID", "Customer", "Email", "Phone", "Service", "Total", "Status", "Message", "Created At", "Updated At"}
	values = append(values, headers)

	for _, order := range orders {
		values = append(values, orderRowValues(order))
	}

	rangeData := fmt.Sprintf("%s!A1:J%d", ordersRange, len(values))
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := s.service.Spreadsheets.Values.Update(s.ordersSheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int, len(orders))
	for i, order := range orders {
		s.rowCache[order.ID] = i + 2 // first data row is 2, below the headers
	}
	return nil
}

// AppendOrder добавляет новый заказ в конец листа
func (s *SheetsService) AppendOrder(ctx context.Context, order models.Order) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{orderRowValues(order)},
	}

	_, err := s.service.Spreadsheets.Values.Append(s.ordersSheetID, ordersRange+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// UpdateOrderStatus updates status (and Updated At) for an order row.
func (s *SheetsService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	rowIdx, err := s.FindOrderRow(ctx, orderID)
	if err != nil {
		return err
	}

	now := time.Now().Format("2006-01-02 15:04:05")

	statusRange := fmt.Sprintf("%s!G%d:G%d", ordersRange, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.ordersSheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{string(status)}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!J%d:J%d", ordersRange, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.ordersSheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{now}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// WarmUpCache populates the row index cache by reading the entire ID column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.ordersSheetID, ordersRange+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id != "" && id != "ID" {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// FindOrderRow locates row index (1-based) for orderID in column A with cache.
func (s *SheetsService) FindOrderRow(ctx context.Context, orderID string) (int, error) {
	if orderID == "" {
		return 0, fmt.Errorf("order id is required")
	}

	if row, ok := s.getCachedRow(orderID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.ordersSheetID, ordersRange+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := row[0].(string); ok && id == orderID {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(orderID, rowIdx)
			return rowIdx, nil
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func orderRowValues(order models.Order) []interface{} {
	return []interface{}{
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.ServiceName,
		order.TotalPrice,
		string(order.Status),
		order.Message,
		order.CreatedAt.Format("2006-01-02 15:04:05"),
		order.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Scopes 服务账号所需权限
var Scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

// Config Google Sheets 客户端配置
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string // 工作表名称，默认 Sheet1
}

// Client 指向单个工作表的 Google Sheets 客户端
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetRange    string
}

// APIError Google API 返回的非 2xx 错误
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api error: %d %s", e.StatusCode, e.Message)
}

// Temporary 5xx 与 429 视为服务暂不可用
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// NewClient 用服务账号凭证文件创建客户端；opts 追加在凭证选项之后（测试时可替换 endpoint）
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	var all []option.ClientOption
	if cfg.CredentialsFile != "" {
		all = append(all, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(Scopes...))
	}
	all = append(all, opts...)
	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    quoteSheetName(cfg.SheetName),
	}, nil
}

// quoteSheetName A1 表示法中工作表名需用单引号包裹，内部单引号转义为两个
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Ping 读取表格元信息，确认表格存在且凭证有效
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets open %s: %w", c.spreadsheetID, convertError(err))
	}
	return nil
}

// Rows 读取工作表全部行，单元格统一转为字符串
func (c *Client) Rows(ctx context.Context) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets get values: %w", convertError(err))
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, cell := range r {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append 在工作表末尾追加一行；RAW 模式原样写入，不解析公式与数字
func (c *Client) Append(ctx context.Context, row []any) error {
	vr := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append row: %w", convertError(err))
	}
	return nil
}

func convertError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{StatusCode: gerr.Code, Message: gerr.Message}
	}
	return err
}

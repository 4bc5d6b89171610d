package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"card-backend/internal/model"
)

// ErrSheetsNotConfigured 启动时未找到凭证文件，整个进程生命周期内不可用
var ErrSheetsNotConfigured = fmt.Errorf("%w: google sheets not configured", model.ErrConfiguration)

// SheetStore 单个工作表的读写能力
type SheetStore interface {
	Rows(ctx context.Context) ([][]string, error)
	Append(ctx context.Context, row []any) error
}

// Spreadsheet 表格句柄：Configured(store) 或 Unconfigured()，零值即 Unconfigured
type Spreadsheet struct {
	store SheetStore
}

// Configured 已配置的表格
func Configured(store SheetStore) Spreadsheet {
	return Spreadsheet{store: store}
}

// Unconfigured 未配置的表格
func Unconfigured() Spreadsheet {
	return Spreadsheet{}
}

// Handle 返回底层存储；ok 为 false 表示未配置
func (s Spreadsheet) Handle() (store SheetStore, ok bool) {
	return s.store, s.store != nil
}

// ContactService 联系人写入与导出
// 同一进程内 "读行数 -> 追加" 串行执行，序号不会重复；其他进程或人工编辑表格仍可能产生冲突
type ContactService struct {
	sheet  Spreadsheet
	logger *zap.Logger
	mu     sync.Mutex
}

// NewContactService 创建联系人服务
func NewContactService(sheet Spreadsheet, logger *zap.Logger) *ContactService {
	return &ContactService{sheet: sheet, logger: logger}
}

// Ready 表格未配置时返回 ErrSheetsNotConfigured
func (s *ContactService) Ready() error {
	if _, ok := s.sheet.Handle(); !ok {
		return ErrSheetsNotConfigured
	}
	return nil
}

// Save 以当前行数为序号追加一行，返回序号
func (s *ContactService) Save(ctx context.Context, c model.Contact) (int, error) {
	store, ok := s.sheet.Handle()
	if !ok {
		return 0, ErrSheetsNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := store.Rows(ctx)
	if err != nil {
		err = classify("read sheet", err)
		s.logger.Error("read sheet failed", zap.Error(err))
		return 0, err
	}
	seq := len(rows)
	if err := store.Append(ctx, c.Row(seq)); err != nil {
		err = classify("append row", err)
		s.logger.Error("append row failed", zap.Int("seq", seq), zap.Error(err))
		return 0, err
	}
	s.logger.Info("contact saved", zap.Int("seq", seq), zap.String("organization", c.Organization))
	return seq, nil
}

// Export 读取工作表全部行用于导出
func (s *ContactService) Export(ctx context.Context) ([][]string, error) {
	store, ok := s.sheet.Handle()
	if !ok {
		return nil, ErrSheetsNotConfigured
	}
	rows, err := store.Rows(ctx)
	if err != nil {
		err = classify("read sheet", err)
		s.logger.Error("export read sheet failed", zap.Error(err))
		return nil, err
	}
	return rows, nil
}

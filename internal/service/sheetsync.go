package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"store-subscription-system/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RevenueSheetSync 把收入流水同步到 Google Sheet，供财务侧查看。
// 流水只追加不修改，同步失败只记日志，不影响审批结果。
type RevenueSheetSync struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewRevenueSheetSync(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*RevenueSheetSync, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	// 读取服务账号凭证
	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("无法加载凭证: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &RevenueSheetSync{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendRevenue 追加一条收入流水到工作表
func (s *RevenueSheetSync) AppendRevenue(entry *model.RevenueEntry) error {
	if s == nil {
		return nil
	}

	values := [][]interface{}{{
		entry.ID,
		entry.StoreID,
		entry.PaymentID,
		entry.Amount,
		entry.CreatedAt.Format(time.RFC3339),
	}}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:E",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	if err != nil {
		log.Printf("收入流水同步到Google Sheet失败: %v", err)
		return err
	}
	return nil
}
